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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willabides/sdl/internal/ir"
)

// S1: a key/value pair split across chunks mid-token.
func TestScenarioStreamingKeyValueSplitAcrossChunks(t *testing.T) {
	p := NewParser(Config{})
	var readyTypes []string
	p.OnIntentReady(func(ev IntentEvent) { readyTypes = append(readyTypes, ev.Type) })

	p.Write([]byte("inte"))
	p.Write([]byte("nt:\n  type: "))
	snap := p.Peek()
	require.Equal(t, ir.KindObject, snap.Value.Get("intent").Kind)

	p.Write([]byte("tool_call\n"))
	snap = p.Peek()
	require.Equal(t, "tool_call", snap.Value.Get("intent").Get("type").Str)

	p.Write([]byte("  name: search\n"))
	res := p.End()
	require.Equal(t, "tool_call", res.Value.Get("intent").Get("type").Str)
	require.Equal(t, "search", res.Value.Get("intent").Get("name").Str)
	require.Equal(t, []string{"tool_call"}, readyTypes)
}

// S2: scalar type coercion across the whole rule set.
func TestScenarioTypeCoercion(t *testing.T) {
	p := NewParser(Config{})
	p.Write([]byte("a: null\nb: true\nc: 3\nd: 3.5\ne: \"3\"\nf: hello\n"))
	res := p.End()

	require.Equal(t, ir.KindNull, res.Value.Get("a").Kind)
	require.True(t, res.Value.Get("b").Bool)
	require.Equal(t, int64(3), res.Value.Get("c").Int)
	require.Equal(t, 3.5, res.Value.Get("d").Float)
	require.Equal(t, ir.KindString, res.Value.Get("e").Kind)
	require.Equal(t, "3", res.Value.Get("e").Str)
	require.Equal(t, "hello", res.Value.Get("f").Str)
}

// S3: reference resolution against a registered id.
func TestScenarioReferenceResolution(t *testing.T) {
	p := NewParser(Config{})
	p.Write([]byte("widgets:\n  - id: btn\n    label: OK\ntarget:\n  ref: btn\n"))
	res := p.End()

	target := res.Value.Get("target")
	require.Equal(t, ir.KindObject, target.Kind)
	require.Equal(t, "OK", target.Get("label").Str)
}

// S4: forward reference resolves once the whole document is in, and a
// cyclic reference never hangs the build.
func TestScenarioForwardReferenceAndCycle(t *testing.T) {
	p := NewParser(Config{})
	p.Write([]byte("target:\n  ref: btn\nwidgets:\n  - id: btn\n    label: OK\n"))
	res := p.End()
	require.Equal(t, "OK", res.Value.Get("target").Get("label").Str)

	p2 := NewParser(Config{})
	p2.Write([]byte("a:\n  id: a\n  next:\n    ref: a\n"))
	res2 := p2.End()
	require.NotEmpty(t, res2.UnresolvedRefs)
}

// RefModeInline disables the ref: <scalar> rewrite, leaving the field as
// a plain string value with no reference resolution attempted.
func TestRefModeInlineLeavesFieldLiteral(t *testing.T) {
	p := NewParser(Config{RefMode: RefModeInline})
	p.Write([]byte("widgets:\n  - id: btn\n    label: OK\ntarget:\n  ref: btn\n"))
	res := p.End()

	target := res.Value.Get("target")
	require.Equal(t, ir.KindObject, target.Kind)
	require.Equal(t, "btn", target.Get("ref").Str)
	require.Empty(t, res.UnresolvedRefs)
}

// S5: an intent expressed as a list fires intent_ready once per item.
func TestScenarioIntentAsList(t *testing.T) {
	p := NewParser(Config{})
	var types []string
	p.OnIntentReady(func(ev IntentEvent) { types = append(types, ev.Type) })

	p.Write([]byte("intent:\n  - type: search\n    q: a\n  - type: fetch\n    id: x\n"))
	p.End()

	require.Equal(t, []string{"search", "fetch"}, types)
}

// S6: a literal block scalar preserves internal structure and embedded
// indentation.
func TestScenarioBlockScalar(t *testing.T) {
	p := NewParser(Config{})
	p.Write([]byte("body: |\n  line one\n  line two\n    indented\nnext: 1\n"))
	res := p.End()

	require.Equal(t, "line one\nline two\n  indented", res.Value.Get("body").Str)
	require.Equal(t, int64(1), res.Value.Get("next").Int)
}

func TestEmptyInputYieldsEmptyObject(t *testing.T) {
	p := NewParser(Config{})
	res := p.End()
	require.Equal(t, ir.KindObject, res.Value.Kind)
	require.Empty(t, res.Value.Object)
}

func TestCommentsOnlyInput(t *testing.T) {
	p := NewParser(Config{})
	p.Write([]byte("# just a comment\n# another\n"))
	res := p.End()
	require.Empty(t, res.Value.Object)
}

func TestWhitespaceOnlyInput(t *testing.T) {
	p := NewParser(Config{})
	p.Write([]byte("   \n\n  \n"))
	res := p.End()
	require.Empty(t, res.Value.Object)
}

func TestSingleKeyNoValue(t *testing.T) {
	p := NewParser(Config{})
	p.Write([]byte("a:\n"))
	res := p.End()
	require.Equal(t, ir.KindObject, res.Value.Get("a").Kind)
	require.Empty(t, res.Value.Get("a").Object)
}

func TestDeepNesting(t *testing.T) {
	src := ""
	for i := 0; i < 12; i++ {
		src += spaces(i) + "a:\n"
	}
	src += spaces(12) + "value: leaf\n"
	p := NewParser(Config{})
	p.Write([]byte(src))
	res := p.End()

	v := res.Value
	for i := 0; i < 12; i++ {
		v = v.Get("a")
		require.NotNil(t, v)
	}
	require.Equal(t, "leaf", v.Get("value").Str)
}

func spaces(level int) string {
	out := ""
	for i := 0; i < level; i++ {
		out += "  "
	}
	return out
}

func TestPeekIsIdempotentWithoutWrite(t *testing.T) {
	p := NewParser(Config{})
	p.Write([]byte("a: 1\n"))
	first := p.Peek()
	second := p.Peek()
	require.Equal(t, first.Value, second.Value)
}

func TestMonotonicGrowth(t *testing.T) {
	p := NewParser(Config{})
	p.Write([]byte("a: 1\n"))
	first := p.Peek()
	p.Write([]byte("b: 2\n"))
	second := p.Peek()
	require.Len(t, first.Value.Object, 1)
	require.Len(t, second.Value.Object, 2)
}

func TestResetClearsState(t *testing.T) {
	p := NewParser(Config{})
	p.Write([]byte("a: 1\n"))
	oldID := p.ID()
	p.Reset()
	require.NotEqual(t, oldID, p.ID())
	res := p.End()
	require.Empty(t, res.Value.Object)
}

func TestValidateReturnsDiagnostics(t *testing.T) {
	p := NewParser(Config{})
	p.Write([]byte("a: 1\n- orphan\n"))
	diags := p.Validate()
	require.NotEmpty(t, diags)
}

func TestStrictPromotesWarningsToErrors(t *testing.T) {
	p := NewParser(Config{Strict: true})
	p.Write([]byte("a: \"unterminated\n"))
	diags := p.Validate()
	require.NotEmpty(t, diags)
	for _, d := range diags {
		require.NotEqual(t, "warning", d.Severity.String())
	}
}
