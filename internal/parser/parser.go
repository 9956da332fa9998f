//
// Copyright (c) 2011-2019 Canonical Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parser turns a token stream into the ast tree via a frame
// stack, the same shape libyaml's event parser uses for its block
// contexts, cut down to the handful of productions this grammar allows:
// a frame is either a mapping, a sequence, or (at the bottom of the
// stack) the as-yet-uncommitted root, which becomes whichever of the two
// its first structural token reveals.
//
// Feed is written to be called once per token, in order, and to never
// block: a structural decision that would require seeing past the
// current token (whether an Indent opens a nested mapping or is about to
// be superseded by a Dash opening a nested sequence) is deferred by
// holding the Indent token until the following token resolves it, rather
// than peeking into tokens that have not arrived yet.
package parser

import (
	"github.com/willabides/sdl/internal/ast"
	"github.com/willabides/sdl/internal/diag"
	"github.com/willabides/sdl/internal/token"
)

// RefRewrite controls whether a mapping entry whose key is literally "ref"
// is rewritten to an ast.Ref node during parsing.
type RefRewrite int

const (
	// RefRewriteDefault resolves to RefRewriteOn in WithDefaults; it is
	// the zero value so a caller who never sets this field gets the
	// rewrite behavior without needing to know the constant exists.
	RefRewriteDefault RefRewrite = iota
	RefRewriteOn
	RefRewriteOff
)

// Config controls parser behavior.
type Config struct {
	// IntentKeys names the mapping keys, at the root, whose value (a
	// mapping, or a sequence of mappings) is probed for intent-ready
	// nodes. Defaults to {"intent"}.
	IntentKeys []string

	// RefRewrite selects whether "ref" entries become ast.Ref nodes.
	// Defaults to RefRewriteOn.
	RefRewrite RefRewrite
}

// WithDefaults returns c with zero fields replaced by their defaults.
func (c Config) WithDefaults() Config {
	if len(c.IntentKeys) == 0 {
		c.IntentKeys = []string{"intent"}
	}
	if c.RefRewrite == RefRewriteDefault {
		c.RefRewrite = RefRewriteOn
	}
	return c
}

type frame struct {
	mapping  *ast.Mapping
	sequence *ast.Sequence
	indent   int

	hasPending  bool
	pendingName string
	pendingLine int
	pendingCol  int
}

func (f *frame) isSequence() bool { return f.sequence != nil }
func (f *frame) isMapping() bool  { return f.mapping != nil }
func (f *frame) isUncommitted() bool {
	return f.mapping == nil && f.sequence == nil
}

// Parser consumes tokens one at a time and builds the ast tree
// incrementally, emitting events as structure closes.
type Parser struct {
	cfg Config

	frames []*frame

	holdIndent   bool
	heldIndentTok token.Token

	emitted map[*ast.Mapping]bool

	handlers handlerTable
	diags    []diag.Diagnostic
}

// New constructs a Parser rooted at an uncommitted frame.
func New(cfg Config) *Parser {
	p := &Parser{cfg: cfg.WithDefaults()}
	p.reset()
	return p
}

func (p *Parser) reset() {
	root := &frame{indent: 0}
	p.frames = []*frame{root}
	p.holdIndent = false
	p.emitted = make(map[*ast.Mapping]bool)
	p.diags = nil
}

// Reset discards all parsed structure and returns the parser to its
// initial, empty-document state.
func (p *Parser) Reset() {
	p.reset()
}

// On registers fn to run whenever an event of kind is emitted.
func (p *Parser) On(kind EventKind, fn Handler) {
	p.handlers.on(kind, fn)
}

// Off removes every handler registered for kind.
func (p *Parser) Off(kind EventKind) {
	p.handlers.clear(kind)
}

// Diagnostics returns the structural diagnostics accumulated so far.
func (p *Parser) Diagnostics() []diag.Diagnostic {
	return p.diags
}

// Root returns the current root node. It may be nil if no structural
// token has arrived yet (an empty or still-blank document).
func (p *Parser) Root() ast.Node {
	root := p.frames[0]
	if root.mapping != nil {
		return root.mapping
	}
	if root.sequence != nil {
		return root.sequence
	}
	return nil
}

func (p *Parser) top() *frame {
	return p.frames[len(p.frames)-1]
}

func (p *Parser) push(f *frame) {
	p.frames = append(p.frames, f)
}

func (p *Parser) addDiag(sev diag.Severity, msg string, line, col int) {
	p.diags = append(p.diags, diag.Diagnostic{Message: msg, Severity: sev, Line: line, Column: col})
}

// Feed advances the parser by one token. Tokens must be fed in the order
// the tokenizer produced them.
func (p *Parser) Feed(tok token.Token) {
	if p.holdIndent {
		switch tok.Kind {
		case token.Newline, token.Comment:
			p.dispatch(tok)
			return
		case token.Dash:
			// The deferred Indent yields to the sequence Dash is about
			// to create for the pending key.
			p.holdIndent = false
			p.dispatch(tok)
			return
		default:
			p.resolveHoldIndent()
			p.holdIndent = false
			p.dispatch(tok)
			return
		}
	}
	if tok.Kind == token.Indent {
		p.holdIndent = true
		p.heldIndentTok = tok
		return
	}
	p.dispatch(tok)
}

// resolveHoldIndent commits the deferred Indent as a nested mapping for
// whatever frame currently holds a pending key.
func (p *Parser) resolveHoldIndent() {
	cur := p.top()
	if !cur.hasPending || !cur.isMapping() {
		// Nothing pending to hang a nested block on (malformed input);
		// drop the held indent.
		return
	}
	m := &ast.Mapping{Line: cur.pendingLine, Column: cur.pendingCol}
	cur.mapping.Append(cur.pendingName, m, cur.pendingLine, cur.pendingCol)
	p.emit(Event{Kind: EventBlockStart, Line: cur.pendingLine, Column: cur.pendingCol})
	cur.hasPending = false
	p.push(&frame{mapping: m, indent: p.heldIndentTok.Indent})
}

func (p *Parser) dispatch(tok token.Token) {
	switch tok.Kind {
	case token.Key:
		p.handleKey(tok)
	case token.Colon:
		// no-op: the separator carries no structural information beyond
		// marking the preceding token a Key, already decided by the
		// tokenizer.
	case token.Dash:
		p.handleDash(tok)
	case token.Scalar:
		p.handleValue(tok, false)
	case token.Quoted:
		p.handleValue(tok, true)
	case token.Indent:
		// Only reached when a held Indent was immediately superseded by
		// another Indent (blank lines between): treat it like a fresh
		// hold.
		p.holdIndent = true
		p.heldIndentTok = tok
	case token.Dedent:
		p.handleDedent(tok)
	case token.Newline:
		// Structural no-op. A pending key that never receives a value
		// is flushed when the next key of its mapping arrives or when
		// its frame is popped (Dedent/Eof), not here, since only then
		// is it known no value is coming.
	case token.Comment:
		p.emit(Event{Kind: EventLine, Text: tok.Text, Line: tok.Pos.Line, Column: tok.Pos.Column})
	case token.Eof:
		p.handleEof(tok)
	}
}

func (p *Parser) handleKey(tok token.Token) {
	cur := p.top()
	switch {
	case cur.isSequence():
		m := &ast.Mapping{Line: tok.Pos.Line, Column: tok.Pos.Column}
		cur.sequence.Append(m)
		p.emit(Event{Kind: EventBlockStart, SequenceItem: true, Line: tok.Pos.Line, Column: tok.Pos.Column})
		newFrame := &frame{mapping: m, indent: cur.indent + 1}
		p.push(newFrame)
		cur = newFrame
	case cur.isUncommitted():
		cur.mapping = &ast.Mapping{Line: tok.Pos.Line, Column: tok.Pos.Column}
	case !cur.isMapping():
		p.addDiag(diag.Warning, "key encountered outside any mapping context", tok.Pos.Line, tok.Pos.Column)
		return
	}
	if cur.hasPending {
		cur.mapping.Append(cur.pendingName, &ast.Empty{Hint: ast.HintMapping, Line: cur.pendingLine, Column: cur.pendingCol}, cur.pendingLine, cur.pendingCol)
	}
	cur.hasPending = true
	cur.pendingName = tok.Text
	cur.pendingLine = tok.Pos.Line
	cur.pendingCol = tok.Pos.Column
	p.emit(Event{Kind: EventKey, Key: tok.Text, Line: tok.Pos.Line, Column: tok.Pos.Column})
}

func (p *Parser) handleDash(tok token.Token) {
	p.emit(Event{Kind: EventBlockStart, SequenceItem: true, Line: tok.Pos.Line, Column: tok.Pos.Column})
	p.popTo(tok.Indent)
	cur := p.top()
	switch {
	case cur.isUncommitted():
		cur.sequence = &ast.Sequence{Line: tok.Pos.Line, Column: tok.Pos.Column}
	case cur.hasPending && cur.isMapping():
		s := &ast.Sequence{Line: tok.Pos.Line, Column: tok.Pos.Column}
		cur.mapping.Append(cur.pendingName, s, cur.pendingLine, cur.pendingCol)
		cur.hasPending = false
		p.push(&frame{sequence: s, indent: tok.Indent})
	case cur.isSequence():
		if tok.Indent > cur.indent {
			inner := &ast.Sequence{Line: tok.Pos.Line, Column: tok.Pos.Column}
			cur.sequence.Append(inner)
			p.push(&frame{sequence: inner, indent: tok.Indent})
		}
		// else: another item of the existing sequence; nothing to push,
		// the following token supplies the item's content.
	case cur.isMapping():
		p.addDiag(diag.Warning, "dash encountered with no pending key to attach a list to", tok.Pos.Line, tok.Pos.Column)
	}
}

func (p *Parser) handleValue(tok token.Token, quoted bool) {
	scalar := &ast.Scalar{Value: tok.Text, Quoted: quoted, Line: tok.Pos.Line, Column: tok.Pos.Column}
	cur := p.top()
	switch {
	case cur.isMapping() && cur.hasPending:
		var value ast.Node = scalar
		if cur.pendingName == "ref" && p.cfg.RefRewrite == RefRewriteOn {
			value = &ast.Ref{Target: tok.Text, Line: tok.Pos.Line, Column: tok.Pos.Column}
		}
		cur.mapping.Append(cur.pendingName, value, cur.pendingLine, cur.pendingCol)
		cur.hasPending = false
		p.emit(Event{Kind: EventValue, Value: value, Line: tok.Pos.Line, Column: tok.Pos.Column})
	case cur.isSequence():
		cur.sequence.Append(scalar)
		p.emit(Event{Kind: EventValue, Value: scalar, Line: tok.Pos.Line, Column: tok.Pos.Column})
	case cur.isUncommitted():
		// A bare scalar document with no key or dash: treat the root as
		// a single-item sequence, a tolerant fallback for a degenerate
		// input the grammar does not otherwise anticipate.
		cur.sequence = &ast.Sequence{Line: tok.Pos.Line, Column: tok.Pos.Column}
		cur.sequence.Append(scalar)
		p.emit(Event{Kind: EventValue, Value: scalar, Line: tok.Pos.Line, Column: tok.Pos.Column})
	default:
		p.addDiag(diag.Warning, "value encountered with no key to attach to", tok.Pos.Line, tok.Pos.Column)
	}
}

// popTo pops frames whose indent exceeds target, flushing any pending
// key on a popped frame as an Empty placeholder and emitting block_end
// per pop. The root frame is never popped.
func (p *Parser) popTo(target int) {
	for len(p.frames) > 1 && p.top().indent > target {
		p.popOne()
	}
}

func (p *Parser) popOne() {
	f := p.frames[len(p.frames)-1]
	if f.hasPending && f.isMapping() {
		f.mapping.Append(f.pendingName, &ast.Empty{Hint: ast.HintMapping, Line: f.pendingLine, Column: f.pendingCol}, f.pendingLine, f.pendingCol)
		f.hasPending = false
	}
	p.frames = p.frames[:len(p.frames)-1]
	p.emit(Event{Kind: EventBlockEnd})
}

func (p *Parser) handleDedent(tok token.Token) {
	p.popTo(tok.Indent)
	p.emit(Event{Kind: EventDedent, Line: tok.Pos.Line, Column: tok.Pos.Column})
	p.probeIntents()
}

func (p *Parser) handleEof(tok token.Token) {
	for len(p.frames) > 1 {
		p.popOne()
	}
	root := p.frames[0]
	if root.hasPending && root.isMapping() {
		root.mapping.Append(root.pendingName, &ast.Empty{Hint: ast.HintMapping, Line: root.pendingLine, Column: root.pendingCol}, root.pendingLine, root.pendingCol)
		root.hasPending = false
	}
	p.probeIntents()
}

// probeIntents runs the intent-ready detection pass: for every root-level
// entry whose key is configured as an intent key, a mapping value (or
// each mapping item of a sequence value) that carries a scalar "type"
// entry fires exactly once per node identity.
func (p *Parser) probeIntents() {
	root := p.frames[0]
	if root.mapping == nil {
		return
	}
	for _, e := range root.mapping.Entries {
		if !p.isIntentKey(e.Key) {
			continue
		}
		switch v := e.Value.(type) {
		case *ast.Mapping:
			p.maybeEmitIntent(v)
		case *ast.Sequence:
			for _, item := range v.Items {
				if m, ok := item.(*ast.Mapping); ok {
					p.maybeEmitIntent(m)
				}
			}
		}
	}
}

func (p *Parser) isIntentKey(key string) bool {
	for _, k := range p.cfg.IntentKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (p *Parser) maybeEmitIntent(m *ast.Mapping) {
	if p.emitted[m] {
		return
	}
	for _, e := range m.Entries {
		if e.Key != "type" {
			continue
		}
		sc, ok := e.Value.(*ast.Scalar)
		if !ok {
			return
		}
		p.emitted[m] = true
		line, col := m.Position()
		p.emit(Event{Kind: EventIntentReady, IntentType: sc.Value, IntentNode: m, Line: line, Column: col})
		return
	}
}

func (p *Parser) emit(ev Event) {
	p.handlers.emit(ev)
}
