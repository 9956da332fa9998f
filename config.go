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

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RefMode selects how a mapping entry whose key is literally "ref" is
// treated by the parser and IR builder.
type RefMode int

const (
	// RefModeSentinel (the default) rewrites ref: <scalar> entries into
	// an ast.Ref node during parsing, resolved against the id registry
	// during IR build.
	RefModeSentinel RefMode = iota
	// RefModeInline disables the rewrite: a ref: <scalar> entry stays a
	// literal string field named "ref", and no reference resolution
	// pass runs over it. Useful when a document legitimately has a
	// field named "ref" that is not meant as a cross-reference.
	RefModeInline
)

// Config controls every tunable surface of a Parser: tokenizer
// behavior, structural parsing behavior, and the ambient logging and
// reference-resolution policy layered on top.
type Config struct {
	// IndentSize is the number of spaces one indentation level
	// represents. Defaults to 2. A tab counts as one IndentSize.
	IndentSize int

	// AllowTabs suppresses the tab-indentation diagnostic. Tabs are
	// always accepted as indentation (counted as IndentSize spaces);
	// this only controls whether using one is flagged.
	AllowTabs bool

	// PreserveComments makes the tokenizer emit Comment tokens (surfaced
	// as "line" events) instead of silently discarding them.
	PreserveComments bool

	// Strict promotes Warning diagnostics to Error.
	Strict bool

	// IntentKeys names the root-level keys probed for intent-ready
	// nodes. Defaults to {"intent"}.
	IntentKeys []string

	// RefMode controls ref: <scalar> handling. Defaults to
	// RefModeSentinel.
	RefMode RefMode

	// Logger receives structured trace output when set. Nil (the
	// default) produces no output at all.
	Logger *logrus.Logger

	// IntentPartialDebounce is the default debounce window applied by
	// OnIntentPartial when none is given explicitly.
	IntentPartialDebounce time.Duration
}

func (c Config) withDefaults() Config {
	if c.IndentSize <= 0 {
		c.IndentSize = 2
	}
	if len(c.IntentKeys) == 0 {
		c.IntentKeys = []string{"intent"}
	}
	if c.IntentPartialDebounce <= 0 {
		c.IntentPartialDebounce = 150 * time.Millisecond
	}
	return c
}
