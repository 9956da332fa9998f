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

package sdl

import "github.com/willabides/sdl/internal/ir"

// EventKind names one of the structural events a Parser emits while
// consuming input.
type EventKind int

const (
	EventLine EventKind = iota
	EventKey
	EventValue
	EventBlockStart
	EventBlockEnd
	EventIndent
	EventDedent
)

func (k EventKind) String() string {
	switch k {
	case EventLine:
		return "line"
	case EventKey:
		return "key"
	case EventValue:
		return "value"
	case EventBlockStart:
		return "block_start"
	case EventBlockEnd:
		return "block_end"
	case EventIndent:
		return "indent"
	case EventDedent:
		return "dedent"
	default:
		return "unknown"
	}
}

// Event is delivered synchronously, in the Write/End call that produced
// it.
type Event struct {
	Kind         EventKind
	Line, Column int
	Text         string // EventLine
	Key          string // EventKey
	Value        string // EventValue: the scalar's raw, uncoerced text
	SequenceItem bool   // EventBlockStart
}

// Handler receives an Event.
type Handler func(Event)

// IntentEvent is delivered when a node under one of Config.IntentKeys
// closes around a recognized "type" discriminator.
type IntentEvent struct {
	Type  string
	Value *ir.Value
}

// IntentHandler receives an IntentEvent.
type IntentHandler func(IntentEvent)
