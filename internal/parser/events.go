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

package parser

import "github.com/willabides/sdl/internal/ast"

// EventKind indexes the fixed-size handler table a Parser keeps. Using a
// small enum rather than a string key avoids allocation on the hot path
// and keeps handler dispatch a direct slice index.
type EventKind int

const (
	EventLine EventKind = iota
	EventKey
	EventValue
	EventBlockStart
	EventBlockEnd
	EventIndent
	EventDedent
	EventIntentReady
	numEventKinds
)

// Event carries whatever payload is relevant to its Kind. Unused fields
// are left at their zero value.
type Event struct {
	Kind   EventKind
	Line   int
	Column int

	Text string // EventLine (comment text)

	Key string // EventKey

	Value ast.Node // EventValue

	SequenceItem bool // EventBlockStart: true when this block opens a sequence item

	IntentType string     // EventIntentReady
	IntentNode *ast.Mapping // EventIntentReady
}

// Handler receives events synchronously, in the call that produced them.
type Handler func(Event)

type handlerTable [numEventKinds][]Handler

func (h *handlerTable) on(kind EventKind, fn Handler) {
	h[kind] = append(h[kind], fn)
}

// clear removes every handler registered for kind. Go funcs are not
// comparable, so a single handler cannot be removed on its own;
// sdl.Parser.Off has the same whole-kind behavior.
func (h *handlerTable) clear(kind EventKind) {
	h[kind] = nil
}

func (h *handlerTable) emit(ev Event) {
	for _, fn := range h[ev.Kind] {
		fn(ev)
	}
}
