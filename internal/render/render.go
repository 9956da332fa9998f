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

// Package render writes an ir.Value back out in the language's own
// indentation-structured textual form, the inverse of tokenizer+parser+ir
// — adapted from the teacher's emitter, cut down to this grammar's five
// productions and without any of the flow-style, anchor, or multi-document
// machinery a general YAML emitter carries.
package render

import (
	"strconv"
	"strings"

	"github.com/willabides/sdl/internal/ir"
)

// Config controls rendering. Zero value is usable; IndentSize defaults
// to 2 when <= 0.
type Config struct {
	IndentSize int
}

func (c Config) withDefaults() Config {
	if c.IndentSize <= 0 {
		c.IndentSize = 2
	}
	return c
}

// Render writes v's canonical textual form. The output, fed back through
// a tokenizer, parser and ir.Build, reproduces an equivalent value.
func Render(v *ir.Value, cfg Config) string {
	cfg = cfg.withDefaults()
	var b strings.Builder
	writeValue(&b, v, 0, cfg)
	return b.String()
}

func indent(b *strings.Builder, level int, cfg Config) {
	b.WriteString(strings.Repeat(" ", level*cfg.IndentSize))
}

// writeValue renders v as the root or as a mapping entry's block value;
// scalars render inline by the caller, so this only handles the
// container shapes plus the degenerate top-level scalar case.
func writeValue(b *strings.Builder, v *ir.Value, level int, cfg Config) {
	if v == nil {
		b.WriteString("null\n")
		return
	}
	switch v.Kind {
	case ir.KindObject:
		if len(v.Object) == 0 {
			return
		}
		for _, f := range v.Object {
			writeEntry(b, f.Key, f.Value, level, cfg)
		}
	case ir.KindArray:
		if len(v.Array) == 0 {
			return
		}
		for _, item := range v.Array {
			writeSequenceItem(b, item, level, cfg)
		}
	case ir.KindRef:
		writeEntry(b, "ref", ir.String(v.RefTarget), level, cfg)
	default:
		indent(b, level, cfg)
		b.WriteString(scalarText(v))
		b.WriteString("\n")
	}
}

func writeEntry(b *strings.Builder, key string, v *ir.Value, level int, cfg Config) {
	indent(b, level, cfg)
	b.WriteString(key)
	b.WriteString(":")
	if isInline(v) {
		b.WriteString(" ")
		b.WriteString(scalarText(v))
		b.WriteString("\n")
		return
	}
	b.WriteString("\n")
	writeValue(b, v, level+1, cfg)
}

func writeSequenceItem(b *strings.Builder, v *ir.Value, level int, cfg Config) {
	indent(b, level, cfg)
	b.WriteString("- ")
	if v != nil && v.Kind == ir.KindObject && len(v.Object) > 0 {
		for i, f := range v.Object {
			if i > 0 {
				indent(b, level+1, cfg)
			}
			b.WriteString(f.Key)
			b.WriteString(":")
			if isInline(f.Value) {
				b.WriteString(" ")
				b.WriteString(scalarText(f.Value))
				b.WriteString("\n")
			} else {
				b.WriteString("\n")
				writeValue(b, f.Value, level+2, cfg)
			}
		}
		return
	}
	if isInline(v) {
		b.WriteString(scalarText(v))
		b.WriteString("\n")
		return
	}
	b.WriteString("\n")
	writeValue(b, v, level+1, cfg)
}

// isInline reports whether v renders on the same line as its key or
// dash, as opposed to opening a nested block.
func isInline(v *ir.Value) bool {
	if v == nil {
		return true
	}
	switch v.Kind {
	case ir.KindObject:
		return len(v.Object) == 0
	case ir.KindArray:
		return len(v.Array) == 0
	case ir.KindRef:
		return false
	default:
		return true
	}
}

func scalarText(v *ir.Value) string {
	if v == nil {
		return "null"
	}
	switch v.Kind {
	case ir.KindNull:
		return "null"
	case ir.KindBool:
		return strconv.FormatBool(v.Bool)
	case ir.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case ir.KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case ir.KindString:
		if needsQuoting(v.Str) {
			return quote(v.Str)
		}
		return v.Str
	case ir.KindRef:
		return "" // handled by the caller, which renders refs as a block
	case ir.KindObject:
		return "{}"
	case ir.KindArray:
		return "[]"
	default:
		return ""
	}
}

// needsQuoting reports whether s, written bare, would be misread as
// something other than a plain string scalar by the tokenizer: empty,
// looks like null/bool/a number, or starts with a structural character.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	switch s {
	case "null", "~", "true", "false":
		return true
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return true
	}
	switch s[0] {
	case '-', '|', '#', '"', '\'', '{', '[', ' ':
		return true
	}
	if strings.Contains(s, ": ") || strings.HasSuffix(s, ":") {
		return true
	}
	return false
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
