// Package fuzz holds native Go fuzz targets that exercise sdl against
// itself rather than against a reference implementation: the grammar
// this module parses has no independent parser to diff against, so the
// invariant under fuzz is internal — chunked and whole-input parses of
// the same bytes must agree.
package fuzz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/willabides/sdl"
)

var seedCorpus = []string{
	"",
	"a: 1\n",
	"a: hello\nb: true\nc: 3.14\n",
	"intent:\n  type: tool_call\n  name: search\n",
	"items:\n  - a\n  - b\n  - c\n",
	"items:\n  - id: x\n    type: Button\n  - id: y\n    type: Button\n",
	"a:\nb: 1\n",
	"widgets:\n  - id: btn\n    label: OK\ntarget:\n  ref: btn\n",
	"body: |\n  line one\n    indented\n",
	"seq: [1, 2, 3]\n",
	"obj: {a: 1, b: 2}\n",
	"# just a comment\na: 1\n",
	"'quoted key': \"quoted value\"\n",
	"- a\n- b\n- c\n",
}

func FuzzStreamingEquivalence(f *testing.F) {
	for _, seed := range seedCorpus {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, src string) {
		whole := sdl.NewParser(sdl.Config{})
		whole.Write([]byte(src))
		wholeRes := whole.End()

		chunked := sdl.NewParser(sdl.Config{})
		for i := 0; i < len(src); i += 3 {
			end := i + 3
			if end > len(src) {
				end = len(src)
			}
			chunked.Write([]byte(src[i:end]))
		}
		chunkedRes := chunked.End()

		require.Equal(t, wholeRes.Value, chunkedRes.Value)
	})
}

func FuzzNeverPanics(f *testing.F) {
	for _, seed := range seedCorpus {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, src string) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic on input %q: %v", src, r)
			}
		}()
		p := sdl.NewParser(sdl.Config{})
		for i := 0; i < len(src); i += 5 {
			end := i + 5
			if end > len(src) {
				end = len(src)
			}
			p.Write([]byte(src[i:end]))
			p.Peek()
		}
		p.End()
	})
}
