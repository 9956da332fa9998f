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

// Package ir builds the typed intermediate representation from an ast
// tree in three passes: scalar coercion, reference resolution against an
// id-keyed registry, and a final ref-lifting sweep. Each pass is total —
// every ast.Node maps to some ir.Value, never an error that aborts the
// build; problems are collected as diagnostics instead.
package ir

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/willabides/sdl/internal/ast"
	"github.com/willabides/sdl/internal/diag"
)

// Kind discriminates the eight IR value variants.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindObject
	KindArray
	KindRef
)

// Field is one key/value pair of an Object, in insertion order.
type Field struct {
	Key   string
	Value *Value
}

// Value is the IR tagged union. Only the field matching Kind is
// meaningful.
type Value struct {
	Kind Kind

	Bool   bool
	Int    int64
	Float  float64
	Str    string
	Object []Field
	Array  []*Value

	RefTarget string // KindRef: the unresolved or resolved-away id
}

// Null, Bool, Int, Float and String construct the scalar values.
func Null() *Value          { return &Value{Kind: KindNull} }
func Bool(b bool) *Value    { return &Value{Kind: KindBool, Bool: b} }
func Int(i int64) *Value    { return &Value{Kind: KindInt, Int: i} }
func Float(f float64) *Value { return &Value{Kind: KindFloat, Float: f} }
func String(s string) *Value { return &Value{Kind: KindString, Str: s} }

// Get returns the value of the first field matching key, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != KindObject {
		return nil
	}
	for _, f := range v.Object {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Registry maps id values to the object that declared them.
type Registry map[string]*Value

// Result is the full output of Build.
type Result struct {
	Value          *Value
	Registry       Registry
	UnresolvedRefs []string
	Errors         []diag.Diagnostic
}

// Build runs all three passes over root and returns the resolved IR. A
// nil root (no structural token ever arrived) yields an empty object,
// never a nil Value.
func Build(root ast.Node) Result {
	b := &builder{registry: make(Registry)}
	if root == nil {
		return Result{Value: &Value{Kind: KindObject}, Registry: b.registry}
	}
	v := b.transform(root)
	b.collectRegistry(v, make(map[*Value]bool))
	resolved := b.resolveRefs(v, nil, make(map[*Value]bool))
	final := b.liftRefOnly(resolved)
	return Result{
		Value:          final,
		Registry:       b.registry,
		UnresolvedRefs: b.unresolved,
		Errors:         b.errs,
	}
}

type builder struct {
	registry   Registry
	unresolved []string
	errs       []diag.Diagnostic
}

// --- Pass 1: ast -> ir, with scalar coercion -------------------------------

func (b *builder) transform(n ast.Node) *Value {
	switch node := n.(type) {
	case *ast.Scalar:
		if node.Quoted {
			return String(node.Value)
		}
		return coerce(node.Value)
	case *ast.Ref:
		return &Value{Kind: KindRef, RefTarget: node.Target}
	case *ast.Empty:
		if node.Hint == ast.HintSequence {
			return &Value{Kind: KindArray}
		}
		return &Value{Kind: KindObject}
	case *ast.Mapping:
		out := &Value{Kind: KindObject}
		for _, e := range node.Entries {
			out.Object = append(out.Object, Field{Key: e.Key, Value: b.transform(e.Value)})
		}
		return out
	case *ast.Sequence:
		out := &Value{Kind: KindArray}
		for _, item := range node.Items {
			out.Array = append(out.Array, b.transform(item))
		}
		return out
	default:
		return Null()
	}
}

// coerce applies the ordered scalar coercion rules to an unquoted
// bareword: null, bool, int, float (including scientific notation), a
// JSON array, a JSON object, and finally string as the total fallback.
func coerce(raw string) *Value {
	switch raw {
	case "", "null", "~":
		return Null()
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return Float(f)
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &arr); err == nil {
			out := &Value{Kind: KindArray}
			for _, raw := range arr {
				out.Array = append(out.Array, fromJSON(raw))
			}
			return out
		}
	}
	if strings.HasPrefix(trimmed, "{") {
		var obj map[string]json.RawMessage
		var order []string
		dec := json.NewDecoder(strings.NewReader(trimmed))
		if tok, err := dec.Token(); err == nil && tok == json.Delim('{') {
			if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
				order = jsonKeyOrder(trimmed)
				out := &Value{Kind: KindObject}
				for _, k := range order {
					out.Object = append(out.Object, Field{Key: k, Value: fromJSON(obj[k])})
				}
				return out
			}
		}
	}
	return String(raw)
}

// jsonKeyOrder recovers source key order from a JSON object literal,
// since encoding/json's map decoding does not preserve it.
func jsonKeyOrder(src string) []string {
	dec := json.NewDecoder(strings.NewReader(src))
	var order []string
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		case string:
			if depth == 1 {
				order = append(order, t)
				// skip the paired value token
				var skip json.RawMessage
				_ = dec.Decode(&skip)
			}
		}
	}
	return order
}

func fromJSON(raw json.RawMessage) *Value {
	// Nested objects and arrays go back through coerce, whose object rule
	// keeps source key order; decoding them into a Go map would not.
	if s := strings.TrimSpace(string(raw)); strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		if v := coerce(s); v.Kind == KindObject || v.Kind == KindArray {
			return v
		}
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return Null()
	}
	return fromGo(v)
}

func fromGo(v interface{}) *Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return Float(t)
	case string:
		return String(t)
	case []interface{}:
		out := &Value{Kind: KindArray}
		for _, item := range t {
			out.Array = append(out.Array, fromGo(item))
		}
		return out
	case map[string]interface{}:
		out := &Value{Kind: KindObject}
		for k, item := range t {
			out.Object = append(out.Object, Field{Key: k, Value: fromGo(item)})
		}
		return out
	default:
		return Null()
	}
}

// --- registry collection ---------------------------------------------------

func (b *builder) collectRegistry(v *Value, seen map[*Value]bool) {
	if v == nil || seen[v] {
		return
	}
	seen[v] = true
	switch v.Kind {
	case KindObject:
		if id := v.Get("id"); id != nil && id.Kind == KindString {
			if _, exists := b.registry[id.Str]; exists {
				b.errs = append(b.errs, diag.Diagnostic{Message: "duplicate id: " + id.Str, Severity: diag.Warning})
			} else {
				b.registry[id.Str] = v
			}
		}
		for _, f := range v.Object {
			b.collectRegistry(f.Value, seen)
		}
	case KindArray:
		for _, item := range v.Array {
			b.collectRegistry(item, seen)
		}
	}
}

// --- Pass 2: reference resolution ------------------------------------------

// resolveRefs walks the tree, replacing KindRef values with a deep copy
// of their target. chain guards against cycles: a ref encountered
// while its own target is mid-resolution is left unresolved rather than
// recursing forever.
func (b *builder) resolveRefs(v *Value, chain []string, memo map[*Value]bool) *Value {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindRef:
		for _, c := range chain {
			if c == v.RefTarget {
				b.errs = append(b.errs, diag.Diagnostic{Message: "cyclic reference: " + v.RefTarget, Severity: diag.Error})
				b.unresolved = append(b.unresolved, v.RefTarget)
				return &Value{Kind: KindRef, RefTarget: v.RefTarget}
			}
		}
		target, ok := b.registry[v.RefTarget]
		if !ok {
			b.unresolved = append(b.unresolved, v.RefTarget)
			b.errs = append(b.errs, diag.Diagnostic{Message: "unresolved reference: " + v.RefTarget, Severity: diag.Error})
			return &Value{Kind: KindRef, RefTarget: v.RefTarget}
		}
		copied := deepCopy(target)
		return b.resolveRefs(copied, append(chain, v.RefTarget), memo)
	case KindObject:
		out := &Value{Kind: KindObject, Object: make([]Field, len(v.Object))}
		for i, f := range v.Object {
			out.Object[i] = Field{Key: f.Key, Value: b.resolveRefs(f.Value, chain, memo)}
		}
		return out
	case KindArray:
		out := &Value{Kind: KindArray, Array: make([]*Value, len(v.Array))}
		for i, item := range v.Array {
			if item != nil && item.Kind == KindString {
				out.Array[i] = b.resolveArrayItem(item.Str, chain, memo)
				continue
			}
			out.Array[i] = b.resolveRefs(item, chain, memo)
		}
		return out
	default:
		return v
	}
}

// resolveArrayItem auto-resolves a bare string array item against the
// registry: a match is replaced in place with a deep copy of the
// registered value (cycle-guarded the same way as a $ref sentinel); a
// miss leaves the string as-is but is still recorded in unresolved, since
// a bareword array item is itself a reference form.
func (b *builder) resolveArrayItem(str string, chain []string, memo map[*Value]bool) *Value {
	for _, c := range chain {
		if c == str {
			b.errs = append(b.errs, diag.Diagnostic{Message: "cyclic reference: " + str, Severity: diag.Error})
			b.unresolved = append(b.unresolved, str)
			return String(str)
		}
	}
	target, ok := b.registry[str]
	if !ok {
		b.unresolved = append(b.unresolved, str)
		return String(str)
	}
	return b.resolveRefs(deepCopy(target), append(chain, str), memo)
}

func deepCopy(v *Value) *Value {
	if v == nil {
		return nil
	}
	cp := *v
	if v.Object != nil {
		cp.Object = make([]Field, len(v.Object))
		for i, f := range v.Object {
			cp.Object[i] = Field{Key: f.Key, Value: deepCopy(f.Value)}
		}
	}
	if v.Array != nil {
		cp.Array = make([]*Value, len(v.Array))
		for i, item := range v.Array {
			cp.Array[i] = deepCopy(item)
		}
	}
	return &cp
}

// --- Pass 3: ref-only lifting ----------------------------------------------

// liftRefOnly collapses any object shaped as exactly {ref: "<target>"}
// into the resolved value it points to. Idempotent: running it again on
// already-lifted output finds nothing left to lift.
func (b *builder) liftRefOnly(v *Value) *Value {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindObject:
		if len(v.Object) == 1 && v.Object[0].Key == "ref" {
			entry := v.Object[0].Value
			if entry.Kind == KindString {
				target := entry.Str
				if resolved, ok := b.registry[target]; ok {
					return b.liftRefOnly(b.resolveRefs(deepCopy(resolved), []string{target}, nil))
				}
				b.unresolved = append(b.unresolved, target)
				return &Value{Kind: KindRef, RefTarget: target}
			}
			// entry is already a resolved composite (KindObject/KindArray,
			// lifted recursively in case it nests further refs), an
			// unresolved/cyclic KindRef left by Pass 2 (unwrapped as-is),
			// or a non-string scalar (returned unchanged) — in every case
			// the wrapping {ref: ...} object itself disappears.
			return b.liftRefOnly(entry)
		}
		out := &Value{Kind: KindObject, Object: make([]Field, len(v.Object))}
		for i, f := range v.Object {
			out.Object[i] = Field{Key: f.Key, Value: b.liftRefOnly(f.Value)}
		}
		return out
	case KindArray:
		out := &Value{Kind: KindArray, Array: make([]*Value, len(v.Array))}
		for i, item := range v.Array {
			out.Array[i] = b.liftRefOnly(item)
		}
		return out
	default:
		return v
	}
}
