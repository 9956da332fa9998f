//
// Copyright (c) 2011-2019 Canonical Ltd
// Copyright (c) 2006-2010 Kirill Simonov
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package tokenizer turns an append-only character buffer into a token
// stream that is safe to consume incrementally: a token whose terminator
// has not yet arrived is withheld (the scan position rewinds to the token
// start) until more input is written or Finalize is called.
//
// The indentation tracking follows the classic roll/unroll-indent-stack
// idiom: a deeper line pushes the old level and emits one Indent; a
// shallower line pops stack frames one at a time, emitting one Dedent per
// frame, until the stack top is no deeper than the new line.
package tokenizer

import (
	"strings"

	"github.com/willabides/sdl/internal/diag"
	"github.com/willabides/sdl/internal/token"
)

// Config controls tokenizer behavior. Zero value is not usable; call
// WithDefaults or go through New, which applies it.
type Config struct {
	IndentSize       int
	AllowTabs        bool
	PreserveComments bool
}

// WithDefaults returns c with zero fields replaced by their defaults.
func (c Config) WithDefaults() Config {
	if c.IndentSize <= 0 {
		c.IndentSize = 2
	}
	return c
}

// mark is a saved scan position, used to rewind on a withheld token.
type mark struct {
	pos  int
	line int
	col  int
}

// Tokenizer is the incremental tokenizer described in package docs. It is
// not safe for concurrent use; a single instance is owned by one producer.
type Tokenizer struct {
	cfg Config

	buf []byte
	pos int
	line int
	col  int

	levels []int // stack of previous indent levels
	level  int   // current indent level

	curLineIndent int
	atLineStart   bool
	finalized     bool
	tabWarned     bool

	pending []token.Token
	diags   []diag.Diagnostic
}

// New constructs a Tokenizer. cfg is defaulted via WithDefaults.
func New(cfg Config) *Tokenizer {
	t := &Tokenizer{cfg: cfg.WithDefaults()}
	t.resetState()
	return t
}

func (t *Tokenizer) resetState() {
	t.buf = nil
	t.pos = 0
	t.line = 1
	t.col = 1
	t.levels = nil
	t.level = 0
	t.curLineIndent = 0
	t.atLineStart = true
	t.finalized = false
	t.tabWarned = false
	t.pending = nil
	t.diags = nil
}

// Write appends chunk to the buffer. It never scans chunk contents.
func (t *Tokenizer) Write(chunk []byte) {
	t.buf = append(t.buf, chunk...)
}

// Reset drops the buffer and rebuilds initial state.
func (t *Tokenizer) Reset() {
	t.resetState()
}

// Diagnostics returns the diagnostics accumulated so far.
func (t *Tokenizer) Diagnostics() []diag.Diagnostic {
	return t.diags
}

func (t *Tokenizer) addDiag(sev diag.Severity, msg string, pos token.Position) {
	t.diags = append(t.diags, diag.Diagnostic{Message: msg, Severity: sev, Line: pos.Line, Column: pos.Column})
}

func (t *Tokenizer) save() mark {
	return mark{pos: t.pos, line: t.line, col: t.col}
}

func (t *Tokenizer) restore(m mark) {
	t.pos, t.line, t.col = m.pos, m.line, m.col
}

func (t *Tokenizer) currentPos() token.Position {
	return token.Position{Line: t.line, Column: t.col, Offset: t.pos}
}

// seekTo moves the cursor forward to idx (idx >= t.pos), recomputing
// line/col by scanning the skipped bytes for newlines. Used after a
// lookahead scan (literal block scalars) commits to an extent.
func (t *Tokenizer) seekTo(idx int) {
	for t.pos < idx {
		if t.buf[t.pos] == '\n' {
			t.line++
			t.col = 1
		} else {
			t.col++
		}
		t.pos++
	}
}

func (t *Tokenizer) advance() byte {
	b := t.buf[t.pos]
	t.pos++
	if b == '\n' {
		t.line++
		t.col = 1
	} else {
		t.col++
	}
	return b
}

func (t *Tokenizer) peekByte(offset int) (byte, bool) {
	i := t.pos + offset
	if i >= len(t.buf) {
		return 0, false
	}
	return t.buf[i], true
}

// Next returns the next token, or (nil, false) when the remaining buffer
// cannot produce a complete token without further input.
func (t *Tokenizer) Next() (*token.Token, bool) {
	for {
		if len(t.pending) > 0 {
			tok := t.pending[0]
			t.pending = t.pending[1:]
			return &tok, true
		}
		if t.atLineStart {
			if !t.consumeIndent() {
				return nil, false
			}
			continue
		}
		if t.pos >= len(t.buf) {
			return nil, false
		}
		tok, ok := t.scanOne()
		if !ok {
			return nil, false
		}
		if tok == nil {
			continue
		}
		return tok, true
	}
}

// Finalize sets the finishing flag, drains remaining tokens (now allowed
// to be partial), then appends synthetic Dedent tokens closing every open
// indent level, followed by a single Eof.
func (t *Tokenizer) Finalize() []token.Token {
	t.finalized = true
	var out []token.Token
	for {
		tok, ok := t.Next()
		if !ok {
			break
		}
		out = append(out, *tok)
	}
	for t.level > 0 {
		var popped int
		if n := len(t.levels); n > 0 {
			popped = t.levels[n-1]
			t.levels = t.levels[:n-1]
		}
		out = append(out, token.Token{Kind: token.Dedent, Pos: t.currentPos(), Indent: popped})
		t.level = popped
	}
	out = append(out, token.Token{Kind: token.Eof, Pos: t.currentPos()})
	return out
}

// consumeIndent measures leading whitespace at a line start and pushes or
// pops the indent stack accordingly. Returns false when more input is
// needed to know whether the line is blank/comment-only or has content.
func (t *Tokenizer) consumeIndent() bool {
	m := t.save()
	spaces := 0
	for {
		b, ok := t.peekByte(0)
		if !ok {
			if !t.finalized {
				t.restore(m)
				return false
			}
			break
		}
		if b == ' ' {
			spaces++
			t.advance()
			continue
		}
		if b == '\t' {
			if !t.cfg.AllowTabs && !t.tabWarned {
				t.addDiag(diag.Warning, "tab used for indentation", t.currentPos())
				t.tabWarned = true
			}
			spaces += t.cfg.IndentSize
			t.advance()
			continue
		}
		break
	}
	nb, ok := t.peekByte(0)
	if !ok {
		if !t.finalized {
			t.restore(m)
			return false
		}
		t.atLineStart = false
		return true
	}
	if nb == '\n' || nb == '#' {
		// Blank or comment-only line: indent stack is untouched.
		t.atLineStart = false
		return true
	}
	level := spaces / t.cfg.IndentSize
	if level > t.level {
		t.levels = append(t.levels, t.level)
		t.level = level
		t.pending = append(t.pending, token.Token{Kind: token.Indent, Pos: t.currentPos(), Indent: level})
	} else {
		for t.level > level {
			var popped int
			if n := len(t.levels); n > 0 {
				popped = t.levels[n-1]
				t.levels = t.levels[:n-1]
			}
			t.pending = append(t.pending, token.Token{Kind: token.Dedent, Pos: t.currentPos(), Indent: popped})
			t.level = popped
		}
	}
	t.curLineIndent = level
	t.atLineStart = false
	return true
}

func (t *Tokenizer) skipInlineSpace() bool {
	m := t.save()
	for {
		b, ok := t.peekByte(0)
		if !ok {
			if !t.finalized {
				t.restore(m)
				return false
			}
			return true
		}
		if b == ' ' || b == '\t' {
			t.advance()
			continue
		}
		return true
	}
}

// scanOne scans a single token starting at the current position (not at
// line start). Returns (token, true) on success, (nil, true) when a token
// was silently consumed (an unpreserved comment), and (nil, false) when
// more input is required.
func (t *Tokenizer) scanOne() (*token.Token, bool) {
	if !t.skipInlineSpace() {
		return nil, false
	}
	if t.pos >= len(t.buf) {
		return nil, false
	}
	b := t.buf[t.pos]
	switch {
	case b == '\n':
		pos := t.currentPos()
		t.advance()
		t.atLineStart = true
		return &token.Token{Kind: token.Newline, Pos: pos, Indent: t.curLineIndent}, true
	case b == '#':
		return t.scanComment()
	case b == '"' || b == '\'':
		return t.scanQuoted(b)
	case b == ':':
		return t.scanColon()
	case b == '-':
		nb, ok := t.peekByte(1)
		if !ok && !t.finalized {
			return nil, false
		}
		if ok && nb == ' ' {
			pos := t.currentPos()
			t.advance()
			return &token.Token{Kind: token.Dash, Text: "-", Pos: pos, Indent: t.curLineIndent}, true
		}
		return t.scanKeyOrScalar()
	case b == '|':
		return t.scanLiteralBlock()
	case b == '{' || b == '[':
		return t.scanInlineFlow(b)
	default:
		return t.scanKeyOrScalar()
	}
}

func (t *Tokenizer) scanComment() (*token.Token, bool) {
	start := t.save()
	for {
		b, ok := t.peekByte(0)
		if !ok {
			if !t.finalized {
				t.restore(start)
				return nil, false
			}
			break
		}
		if b == '\n' {
			break
		}
		t.advance()
	}
	text := string(t.buf[start.pos+1 : t.pos])
	if !t.cfg.PreserveComments {
		return nil, true
	}
	return &token.Token{Kind: token.Comment, Text: text, Pos: token.Position{Line: start.line, Column: start.col, Offset: start.pos}, Indent: t.curLineIndent}, true
}

func (t *Tokenizer) scanColon() (*token.Token, bool) {
	nb, ok := t.peekByte(1)
	if !ok && !t.finalized {
		return nil, false
	}
	if ok && nb != ' ' && nb != '\n' {
		// Colon inside a bareword; treat as ordinary content.
		return t.scanKeyOrScalar()
	}
	pos := t.currentPos()
	t.advance()
	return &token.Token{Kind: token.Colon, Text: ":", Pos: pos, Indent: t.curLineIndent}, true
}

func (t *Tokenizer) scanQuoted(quote byte) (*token.Token, bool) {
	start := t.save()
	t.advance() // opening quote
	var sb strings.Builder
	for {
		b, ok := t.peekByte(0)
		if !ok {
			if !t.finalized {
				t.restore(start)
				return nil, false
			}
			t.addDiag(diag.Warning, "unterminated quoted scalar", t.currentPos())
			break
		}
		if b == '\n' {
			t.addDiag(diag.Warning, "unterminated quoted scalar", t.currentPos())
			break
		}
		if b == quote {
			t.advance()
			break
		}
		if b == '\\' {
			nb, hasNb := t.peekByte(1)
			if !hasNb {
				if !t.finalized {
					t.restore(start)
					return nil, false
				}
				t.advance()
				sb.WriteByte('\\')
				continue
			}
			t.advance()
			t.advance()
			switch nb {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			default:
				sb.WriteByte(nb)
			}
			continue
		}
		t.advance()
		sb.WriteByte(b)
	}
	return &token.Token{Kind: token.Quoted, Text: sb.String(), Pos: token.Position{Line: start.line, Column: start.col, Offset: start.pos}, Indent: t.curLineIndent}, true
}

// scanKeyOrScalar reads a bareword run until newline, '#', or a
// key-terminating colon. The terminator decides Key vs Scalar.
func (t *Tokenizer) scanKeyOrScalar() (*token.Token, bool) {
	start := t.save()
	isKey := false
	for {
		b, ok := t.peekByte(0)
		if !ok {
			if !t.finalized {
				t.restore(start)
				return nil, false
			}
			break
		}
		if b == '\n' || b == '#' {
			break
		}
		if b == ':' {
			nb, hasNb := t.peekByte(1)
			if !hasNb {
				if !t.finalized {
					t.restore(start)
					return nil, false
				}
				isKey = true
				break
			}
			if nb == ' ' || nb == '\n' {
				isKey = true
				break
			}
		}
		t.advance()
	}
	text := string(t.buf[start.pos:t.pos])
	pos := token.Position{Line: start.line, Column: start.col, Offset: start.pos}
	if isKey {
		return &token.Token{Kind: token.Key, Text: text, Pos: pos, Indent: t.curLineIndent}, true
	}
	return &token.Token{Kind: token.Scalar, Text: text, Pos: pos, Indent: t.curLineIndent}, true
}

func (t *Tokenizer) scanInlineFlow(open byte) (*token.Token, bool) {
	start := t.save()
	closeByte := byte('}')
	if open == '[' {
		closeByte = ']'
	}
	depth := 1
	t.advance()
	for {
		b, ok := t.peekByte(0)
		if !ok {
			if !t.finalized {
				t.restore(start)
				return nil, false
			}
			break
		}
		if b == '\n' {
			break
		}
		if b == open {
			depth++
			t.advance()
			continue
		}
		if b == closeByte {
			depth--
			t.advance()
			if depth == 0 {
				break
			}
			continue
		}
		t.advance()
	}
	text := string(t.buf[start.pos:t.pos])
	return &token.Token{Kind: token.Scalar, Text: text, Pos: token.Position{Line: start.line, Column: start.col, Offset: start.pos}, Indent: t.curLineIndent}, true
}

type blockLine struct {
	indent int
	text   string
	blank  bool
}

// scanLiteralBlock implements the '|' literal block scalar: the rest of
// the indicator line is discarded, then every subsequent line whose
// indent is >= the first content line's indent joins the value, each
// stripped of exactly that many leading spaces.
func (t *Tokenizer) scanLiteralBlock() (*token.Token, bool) {
	start := t.save()
	startIndent := t.curLineIndent
	t.advance() // consume '|'
	for {
		b, ok := t.peekByte(0)
		if !ok {
			if !t.finalized {
				t.restore(start)
				return nil, false
			}
			break
		}
		if b == '\n' {
			break
		}
		t.advance()
	}
	if t.pos >= len(t.buf) {
		// Finalized with nothing after the indicator line.
		t.atLineStart = true
		return &token.Token{Kind: token.Scalar, Text: "", Pos: token.Position{Line: start.line, Column: start.col, Offset: start.pos}, Indent: startIndent}, true
	}
	idx := t.pos + 1 // skip the newline ending the indicator line
	blockIndent := -1
	var lines []blockLine
	for {
		lineStart := idx
		sp := 0
		for idx < len(t.buf) && t.buf[idx] == ' ' {
			sp++
			idx++
		}
		if idx >= len(t.buf) {
			if !t.finalized {
				t.restore(start)
				return nil, false
			}
			break
		}
		if t.buf[idx] == '\n' {
			lines = append(lines, blockLine{indent: sp, blank: true})
			idx++
			continue
		}
		if blockIndent == -1 {
			if sp == 0 {
				idx = lineStart
				break
			}
			blockIndent = sp
		}
		if sp < blockIndent {
			idx = lineStart
			break
		}
		extra := sp - blockIndent
		textStart := idx
		for idx < len(t.buf) && t.buf[idx] != '\n' {
			idx++
		}
		if idx >= len(t.buf) {
			if !t.finalized {
				t.restore(start)
				return nil, false
			}
			lines = append(lines, blockLine{indent: sp, text: strings.Repeat(" ", extra) + string(t.buf[textStart:idx])})
			break
		}
		lines = append(lines, blockLine{indent: sp, text: strings.Repeat(" ", extra) + string(t.buf[textStart:idx])})
		idx++
	}
	var value string
	if blockIndent != -1 {
		parts := make([]string, len(lines))
		for i, l := range lines {
			parts[i] = l.text
		}
		value = strings.Join(parts, "\n")
	}
	t.seekTo(idx)
	t.atLineStart = true
	return &token.Token{Kind: token.Scalar, Text: value, Pos: token.Position{Line: start.line, Column: start.col, Offset: start.pos}, Indent: startIndent}, true
}
