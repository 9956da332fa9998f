//
// Copyright (c) 2011-2019 Canonical Ltd
// Copyright (c) 2006-2010 Kirill Simonov
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package token holds the token vocabulary produced by the tokenizer and
// consumed by the parser. Tokens are transient: they are not retained
// beyond the call that consumes them.
package token

import "fmt"

// Kind tags the ten token variants the tokenizer produces.
type Kind int

const (
	Key Kind = iota
	Colon
	Dash
	Scalar
	Quoted
	Indent
	Dedent
	Newline
	Comment
	Eof
)

func (k Kind) String() string {
	switch k {
	case Key:
		return "Key"
	case Colon:
		return "Colon"
	case Dash:
		return "Dash"
	case Scalar:
		return "Scalar"
	case Quoted:
		return "Quoted"
	case Indent:
		return "Indent"
	case Dedent:
		return "Dedent"
	case Newline:
		return "Newline"
	case Comment:
		return "Comment"
	case Eof:
		return "Eof"
	default:
		return "Unknown"
	}
}

// Position is a 1-indexed line/column, 0-indexed byte offset.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Token is a tagged record produced by the tokenizer in order, and
// consumed in order by the parser.
type Token struct {
	Kind   Kind
	Text   string
	Pos    Position
	Indent int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Text, t.Pos.Line, t.Pos.Column)
}
