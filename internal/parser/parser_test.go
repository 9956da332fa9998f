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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willabides/sdl/internal/ast"
	"github.com/willabides/sdl/internal/token"
	"github.com/willabides/sdl/internal/tokenizer"
)

// feedAll drains a finalized token batch through the parser.
func feedAll(p *Parser, toks []token.Token) {
	for _, tok := range toks {
		p.Feed(tok)
	}
}

func tokenize(t *testing.T, src string) []token.Token {
	t.Helper()
	tz := tokenizer.New(tokenizer.Config{})
	tz.Write([]byte(src))
	var toks []token.Token
	for {
		tok, ok := tz.Next()
		if !ok {
			break
		}
		toks = append(toks, *tok)
	}
	toks = append(toks, tz.Finalize()...)
	return toks
}

func TestParserFlatMapping(t *testing.T) {
	toks := tokenize(t, "name: widget\ncount: 3\n")
	p := New(Config{})
	feedAll(p, toks)

	root, ok := p.Root().(*ast.Mapping)
	require.True(t, ok)
	require.Len(t, root.Entries, 2)
	require.Equal(t, "name", root.Entries[0].Key)
	require.Equal(t, "widget", root.Entries[0].Value.(*ast.Scalar).Value)
	require.Equal(t, "count", root.Entries[1].Key)
	require.Equal(t, "3", root.Entries[1].Value.(*ast.Scalar).Value)
}

func TestParserNestedMapping(t *testing.T) {
	toks := tokenize(t, "intent:\n  type: tool_call\n  name: search\n")
	p := New(Config{})
	feedAll(p, toks)

	root := p.Root().(*ast.Mapping)
	require.Len(t, root.Entries, 1)
	inner, ok := root.Entries[0].Value.(*ast.Mapping)
	require.True(t, ok)
	require.Len(t, inner.Entries, 2)
	require.Equal(t, "type", inner.Entries[0].Key)
	require.Equal(t, "tool_call", inner.Entries[0].Value.(*ast.Scalar).Value)
	require.Equal(t, "name", inner.Entries[1].Key)
	require.Equal(t, "search", inner.Entries[1].Value.(*ast.Scalar).Value)
}

func TestParserSequenceOfScalars(t *testing.T) {
	toks := tokenize(t, "items:\n  - a\n  - b\n  - c\n")
	p := New(Config{})
	feedAll(p, toks)

	root := p.Root().(*ast.Mapping)
	seq, ok := root.Entries[0].Value.(*ast.Sequence)
	require.True(t, ok)
	require.Len(t, seq.Items, 3)
	require.Equal(t, "a", seq.Items[0].(*ast.Scalar).Value)
	require.Equal(t, "b", seq.Items[1].(*ast.Scalar).Value)
	require.Equal(t, "c", seq.Items[2].(*ast.Scalar).Value)
}

func TestParserSequenceOfMappings(t *testing.T) {
	toks := tokenize(t, "items:\n  - id: btn\n    type: Button\n  - id: btn2\n    type: Button2\n")
	p := New(Config{})
	feedAll(p, toks)

	root := p.Root().(*ast.Mapping)
	seq := root.Entries[0].Value.(*ast.Sequence)
	require.Len(t, seq.Items, 2)

	m0 := seq.Items[0].(*ast.Mapping)
	require.Equal(t, "id", m0.Entries[0].Key)
	require.Equal(t, "btn", m0.Entries[0].Value.(*ast.Scalar).Value)
	require.Equal(t, "type", m0.Entries[1].Key)
	require.Equal(t, "Button", m0.Entries[1].Value.(*ast.Scalar).Value)

	m1 := seq.Items[1].(*ast.Mapping)
	require.Equal(t, "btn2", m1.Entries[0].Value.(*ast.Scalar).Value)
}

func TestParserTopLevelSequence(t *testing.T) {
	toks := tokenize(t, "- a\n- b\n")
	p := New(Config{})
	feedAll(p, toks)

	seq, ok := p.Root().(*ast.Sequence)
	require.True(t, ok)
	require.Len(t, seq.Items, 2)
}

func TestParserRefRewrite(t *testing.T) {
	toks := tokenize(t, "target:\n  ref: btn\n")
	p := New(Config{})
	feedAll(p, toks)

	root := p.Root().(*ast.Mapping)
	inner := root.Entries[0].Value.(*ast.Mapping)
	ref, ok := inner.Entries[0].Value.(*ast.Ref)
	require.True(t, ok)
	require.Equal(t, "btn", ref.Target)
}

func TestParserEmptyValueFlushedOnNextKey(t *testing.T) {
	toks := tokenize(t, "a:\nb: 1\n")
	p := New(Config{})
	feedAll(p, toks)

	root := p.Root().(*ast.Mapping)
	require.Len(t, root.Entries, 2)
	_, ok := root.Entries[0].Value.(*ast.Empty)
	require.True(t, ok)
	require.Equal(t, "1", root.Entries[1].Value.(*ast.Scalar).Value)
}

func TestParserIntentReadyMapping(t *testing.T) {
	toks := tokenize(t, "intent:\n  type: tool_call\n  name: search\n")
	p := New(Config{})

	var got []Event
	p.On(EventIntentReady, func(ev Event) { got = append(got, ev) })
	feedAll(p, toks)

	require.Len(t, got, 1)
	require.Equal(t, "tool_call", got[0].IntentType)
}

func TestParserIntentReadyListFiresOncePerItem(t *testing.T) {
	toks := tokenize(t, "intent:\n  - type: search\n    q: a\n  - type: fetch\n    id: x\n")
	p := New(Config{})

	var types []string
	p.On(EventIntentReady, func(ev Event) { types = append(types, ev.IntentType) })
	feedAll(p, toks)

	require.Equal(t, []string{"search", "fetch"}, types)
}

func TestParserIntentReadyFiresAtMostOncePerNode(t *testing.T) {
	toks := tokenize(t, "intent:\n  type: tool_call\n  extra: field\nother: 1\n")
	p := New(Config{})

	count := 0
	p.On(EventIntentReady, func(ev Event) { count++ })
	feedAll(p, toks)

	require.Equal(t, 1, count)
}

func TestParserStreamingEquivalence(t *testing.T) {
	src := "intent:\n  type: tool_call\n  name: search\n"
	whole := tokenize(t, src)

	pWhole := New(Config{})
	feedAll(pWhole, whole)

	tz := tokenizer.New(tokenizer.Config{})
	pChunked := New(Config{})
	var chunked []token.Token
	for _, chunk := range []string{"inte", "nt:\n  type: ", "tool_call\n", "  name: search\n"} {
		tz.Write([]byte(chunk))
		for {
			tok, ok := tz.Next()
			if !ok {
				break
			}
			chunked = append(chunked, *tok)
			pChunked.Feed(*tok)
		}
	}
	final := tz.Finalize()
	chunked = append(chunked, final...)
	for _, tok := range final {
		pChunked.Feed(tok)
	}

	rootWhole := pWhole.Root().(*ast.Mapping)
	rootChunked := pChunked.Root().(*ast.Mapping)
	require.Equal(t, rootWhole.Entries[0].Key, rootChunked.Entries[0].Key)

	innerWhole := rootWhole.Entries[0].Value.(*ast.Mapping)
	innerChunked := rootChunked.Entries[0].Value.(*ast.Mapping)
	require.Equal(t, len(innerWhole.Entries), len(innerChunked.Entries))
	for i := range innerWhole.Entries {
		require.Equal(t, innerWhole.Entries[i].Key, innerChunked.Entries[i].Key)
		require.Equal(t, innerWhole.Entries[i].Value.(*ast.Scalar).Value, innerChunked.Entries[i].Value.(*ast.Scalar).Value)
	}
}

func TestParserEmptyInput(t *testing.T) {
	toks := tokenize(t, "")
	p := New(Config{})
	feedAll(p, toks)
	require.Nil(t, p.Root())
}

func TestParserOrphanDashDiagnostic(t *testing.T) {
	toks := tokenize(t, "a: 1\n- b\n")
	p := New(Config{})
	feedAll(p, toks)
	require.NotEmpty(t, p.Diagnostics())
}
