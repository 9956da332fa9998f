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

// Package obslog wraps logrus for the streaming facade's optional,
// opt-in debug logging; the tokenizer and parser do not log. A caller
// that never sets
// Config.Logger gets a silenced logger, so library use produces no output
// by default.
package obslog

import "github.com/sirupsen/logrus"

// New returns a logger scoped to a parser session. base may be nil, in
// which case a logger discarding everything is returned.
func New(base *logrus.Logger, sessionID string) *logrus.Entry {
	if base == nil {
		base = logrus.New()
		base.Out = discard{}
		base.SetLevel(logrus.PanicLevel)
	}
	return base.WithField("session", sessionID)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
