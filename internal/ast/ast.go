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

// Package ast defines the closed, five-variant tagged union the parser
// builds and the IR builder walks. Pattern-matching on Kind via a type
// switch is preferred over open inheritance: every transition the parser
// makes is explicit on this tag.
package ast

// Kind discriminates the AST node variants.
type Kind int

const (
	KindScalar Kind = iota
	KindMapping
	KindSequence
	KindRef
	KindEmpty
)

// EmptyHint records what kind of block a flushed empty entry stood in for.
type EmptyHint int

const (
	HintMapping EmptyHint = iota
	HintSequence
)

// Node is the common interface implemented by all five AST variants.
// Source position fields are never rewritten after a node is first
// attached to its parent.
type Node interface {
	Kind() Kind
	Position() (line, column int)
}

// Scalar is a raw textual value. Quoted scalars bypass all type coercion
// during IR build.
type Scalar struct {
	Value  string
	Quoted bool
	Line   int
	Column int
}

func (*Scalar) Kind() Kind             { return KindScalar }
func (s *Scalar) Position() (int, int) { return s.Line, s.Column }

// Entry is one key/value pair of a Mapping, in insertion order. Duplicate
// keys are retained; no deduplication happens at the AST level.
type Entry struct {
	Key    string
	Value  Node
	Line   int
	Column int
}

// Mapping is an ordered set of entries. Insertion order is observable.
type Mapping struct {
	Entries []Entry
	Line    int
	Column  int
}

func (*Mapping) Kind() Kind             { return KindMapping }
func (m *Mapping) Position() (int, int) { return m.Line, m.Column }

// Append adds an entry at the end. Mapping itself never deduplicates.
func (m *Mapping) Append(key string, value Node, line, column int) {
	m.Entries = append(m.Entries, Entry{Key: key, Value: value, Line: line, Column: column})
}

// Sequence is an ordered list of items.
type Sequence struct {
	Items  []Node
	Line   int
	Column int
}

func (*Sequence) Kind() Kind             { return KindSequence }
func (s *Sequence) Position() (int, int) { return s.Line, s.Column }

func (s *Sequence) Append(n Node) {
	s.Items = append(s.Items, n)
}

// Ref is synthesized when a mapping entry's key is literally "ref" and its
// value is a scalar: the scalar is replaced by this node before insertion.
type Ref struct {
	Target string
	Line   int
	Column int
}

func (*Ref) Kind() Kind             { return KindRef }
func (r *Ref) Position() (int, int) { return r.Line, r.Column }

// Empty is a placeholder for a key whose value block never materialized.
type Empty struct {
	Hint   EmptyHint
	Line   int
	Column int
}

func (*Empty) Kind() Kind             { return KindEmpty }
func (e *Empty) Position() (int, int) { return e.Line, e.Column }
