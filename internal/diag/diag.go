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

// Package diag carries the diagnostic types shared by the tokenizer, parser
// and IR builder. Diagnostics are reported, never thrown: every pass keeps
// producing a best-effort result alongside the diagnostics it collected.
package diag

// Severity classifies how serious a Diagnostic is.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a structural parse diagnostic: unexpected dedent, orphan
// dash, inconsistent indentation, unterminated quoted scalar, and similar.
type Diagnostic struct {
	Message  string
	Severity Severity
	Line     int
	Column   int
	Context  string
}

// Promote raises diagnostics at or above Warning to Error, used by the
// validate-only API when strict mode is enabled.
func Promote(diags []Diagnostic, strict bool) []Diagnostic {
	if !strict {
		return diags
	}
	out := make([]Diagnostic, len(diags))
	for i, d := range diags {
		if d.Severity >= Warning {
			d.Severity = Error
		}
		out[i] = d
	}
	return out
}
