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

// Package sdl is the streaming facade over the tokenizer, structural
// parser and IR builder: write chunks as they arrive from the model,
// peek a resolved snapshot at any time, and subscribe to structural and
// intent-ready events as they happen, without waiting for the stream to
// end.
package sdl

import (
	"time"

	"github.com/google/uuid"

	"github.com/willabides/sdl/internal/ast"
	"github.com/willabides/sdl/internal/diag"
	"github.com/willabides/sdl/internal/ir"
	"github.com/willabides/sdl/internal/obslog"
	"github.com/willabides/sdl/internal/parser"
	"github.com/willabides/sdl/internal/token"
	"github.com/willabides/sdl/internal/tokenizer"
)

// Parser is the streaming entry point. It is not safe for concurrent
// use: write/peek/end/reset calls on one instance must be serialized by
// the caller, matching the single-producer assumption of the tokenizer
// it wraps.
type Parser struct {
	cfg Config
	id  uuid.UUID

	tz *tokenizer.Tokenizer
	ps *parser.Parser

	handlers      [7][]Handler
	intentReady   []IntentHandler
	intentPartial []intentPartialSub

	closedIntents map[*ast.Mapping]bool
	lastPartial   map[*ast.Mapping]time.Time

	ended bool
}

type intentPartialSub struct {
	handler  IntentHandler
	debounce time.Duration
}

// NewParser constructs a Parser. Config zero value is usable; all
// tunables default via Config.withDefaults.
func NewParser(cfg Config) *Parser {
	cfg = cfg.withDefaults()
	id := uuid.New()
	logger := obslog.New(cfg.Logger, id.String())
	logger.Debug("parser created")

	p := &Parser{
		cfg: cfg,
		id:  id,
		tz: tokenizer.New(tokenizer.Config{
			IndentSize:       cfg.IndentSize,
			AllowTabs:        cfg.AllowTabs,
			PreserveComments: cfg.PreserveComments,
		}),
		ps:            parser.New(parser.Config{IntentKeys: cfg.IntentKeys, RefRewrite: refRewriteFor(cfg.RefMode)}),
		closedIntents: make(map[*ast.Mapping]bool),
		lastPartial:   make(map[*ast.Mapping]time.Time),
	}
	p.wireParserEvents()
	return p
}

// ID returns the parser's session identifier, stable for its lifetime
// (a fresh one is assigned on Reset).
func (p *Parser) ID() uuid.UUID { return p.id }

func refRewriteFor(mode RefMode) parser.RefRewrite {
	if mode == RefModeInline {
		return parser.RefRewriteOff
	}
	return parser.RefRewriteOn
}

func (p *Parser) wireParserEvents() {
	p.ps.On(parser.EventLine, func(ev parser.Event) { p.emit(EventLine, toEvent(ev)) })
	p.ps.On(parser.EventKey, func(ev parser.Event) { p.emit(EventKey, toEvent(ev)) })
	p.ps.On(parser.EventValue, func(ev parser.Event) {
		e := toEvent(ev)
		if sc, ok := ev.Value.(*ast.Scalar); ok {
			e.Value = sc.Value
		} else if ref, ok := ev.Value.(*ast.Ref); ok {
			e.Value = ref.Target
		}
		p.emit(EventValue, e)
	})
	p.ps.On(parser.EventBlockStart, func(ev parser.Event) { p.emit(EventBlockStart, toEvent(ev)) })
	p.ps.On(parser.EventBlockEnd, func(ev parser.Event) { p.emit(EventBlockEnd, toEvent(ev)) })
	p.ps.On(parser.EventDedent, func(ev parser.Event) {
		p.emit(EventDedent, toEvent(ev))
		p.checkPartials()
	})
	p.ps.On(parser.EventIntentReady, func(ev parser.Event) {
		p.closedIntents[ev.IntentNode] = true
		value := ir.Build(ev.IntentNode).Value
		for _, h := range p.intentReady {
			h(IntentEvent{Type: ev.IntentType, Value: value})
		}
	})
}

func toEvent(ev parser.Event) Event {
	return Event{Line: ev.Line, Column: ev.Column, Text: ev.Text, Key: ev.Key, SequenceItem: ev.SequenceItem}
}

func (p *Parser) emit(kind EventKind, ev Event) {
	ev.Kind = kind
	for _, h := range p.handlers[kind] {
		h(ev)
	}
}

// On registers fn for every event of kind.
func (p *Parser) On(kind EventKind, fn Handler) {
	p.handlers[kind] = append(p.handlers[kind], fn)
}

// Off removes every handler registered for kind.
func (p *Parser) Off(kind EventKind) {
	p.handlers[kind] = nil
}

// OnIntentReady registers fn to run once per node identity, the first
// time a node under an IntentKeys entry closes around a scalar "type"
// discriminator.
func (p *Parser) OnIntentReady(fn IntentHandler) {
	p.intentReady = append(p.intentReady, fn)
}

// OnIntentPartial registers fn to receive early, possibly-incomplete
// snapshots of a recognized intent node while it is still under
// construction: once the node has a scalar "type" field and until it
// fires intent_ready. Snapshots are taken synchronously, after each key
// or scalar token and each dedent. The debounce window is a throttle,
// not a timer: a snapshot of a node is skipped when the previous one was
// delivered less than the window ago, and no delayed snapshot follows.
// The window applied is the shortest among all registered handlers, and
// every handler receives the same snapshots. debounce defaults to
// Config.IntentPartialDebounce when omitted.
func (p *Parser) OnIntentPartial(fn IntentHandler, debounce ...time.Duration) {
	d := p.cfg.IntentPartialDebounce
	if len(debounce) > 0 && debounce[0] > 0 {
		d = debounce[0]
	}
	p.intentPartial = append(p.intentPartial, intentPartialSub{handler: fn, debounce: d})
}

// Write appends a chunk and drains every token it completes through the
// parser, delivering events synchronously.
func (p *Parser) Write(chunk []byte) {
	if p.ended {
		return
	}
	p.tz.Write(chunk)
	p.drain()
}

func (p *Parser) drain() {
	for {
		tok, ok := p.tz.Next()
		if !ok {
			return
		}
		p.ps.Feed(*tok)
		if tok.Kind == token.Key || tok.Kind == token.Scalar || tok.Kind == token.Quoted {
			p.checkPartials()
		}
	}
}

// Peek resolves and returns a snapshot of the document as constructed so
// far, without altering parser state. Calling Peek repeatedly without an
// intervening Write returns an identical value.
func (p *Parser) Peek() ir.Result {
	return ir.Build(p.ps.Root())
}

// End finalizes the stream (no further Write calls are accepted),
// delivers any trailing synthetic dedent/eof events, and returns the
// final resolved document.
func (p *Parser) End() ir.Result {
	if !p.ended {
		p.ended = true
		for _, tok := range p.tz.Finalize() {
			p.ps.Feed(tok)
		}
	}
	return ir.Build(p.ps.Root())
}

// Reset discards all parsed state and assigns a fresh session ID, as if
// the Parser were newly constructed with the same Config, except that
// every registered handler is kept.
func (p *Parser) Reset() {
	p.tz.Reset()
	p.ps.Reset()
	p.closedIntents = make(map[*ast.Mapping]bool)
	p.lastPartial = make(map[*ast.Mapping]time.Time)
	p.ended = false
	p.id = uuid.New()
}

// Diagnostics returns every diagnostic raised so far, tokenizer and
// parser combined, with Warning promoted to Error when Config.Strict is
// set.
func (p *Parser) Diagnostics() []diag.Diagnostic {
	all := append(append([]diag.Diagnostic{}, p.tz.Diagnostics()...), p.ps.Diagnostics()...)
	return diag.Promote(all, p.cfg.Strict)
}

// Validate runs the stream to completion against already-written input
// and returns only its diagnostics, discarding the resolved value. It is
// a convenience for callers that have the whole document up front and
// want a single pass/fail signal.
func (p *Parser) Validate() []diag.Diagnostic {
	p.End()
	return p.Diagnostics()
}

// checkPartials walks the live, possibly-incomplete root for intent
// candidate nodes and fires a debounced partial snapshot for any that
// have gained a "type" field but have not yet fired intent_ready.
func (p *Parser) checkPartials() {
	if len(p.intentPartial) == 0 {
		return
	}
	root, ok := p.ps.Root().(*ast.Mapping)
	if !ok {
		return
	}
	for _, e := range root.Entries {
		if !p.isIntentKey(e.Key) {
			continue
		}
		switch v := e.Value.(type) {
		case *ast.Mapping:
			p.maybeEmitPartial(v)
		case *ast.Sequence:
			for _, item := range v.Items {
				if m, ok := item.(*ast.Mapping); ok {
					p.maybeEmitPartial(m)
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

func (p *Parser) maybeEmitPartial(m *ast.Mapping) {
	if p.closedIntents[m] {
		return
	}
	var intentType string
	hasType := false
	for _, e := range m.Entries {
		if e.Key == "type" {
			if sc, ok := e.Value.(*ast.Scalar); ok {
				intentType = sc.Value
				hasType = true
			}
			break
		}
	}
	if !hasType {
		return
	}
	now := nowFunc()
	if last, seen := p.lastPartial[m]; seen && now.Sub(last) < p.minDebounce() {
		return
	}
	p.lastPartial[m] = now
	value := ir.Build(m).Value
	for _, sub := range p.intentPartial {
		sub.handler(IntentEvent{Type: intentType, Value: value})
	}
}

func (p *Parser) minDebounce() time.Duration {
	min := p.intentPartial[0].debounce
	for _, sub := range p.intentPartial[1:] {
		if sub.debounce < min {
			min = sub.debounce
		}
	}
	return min
}

// nowFunc is a var so tests can stub time without making real time part
// of the package's exported surface.
var nowFunc = time.Now
