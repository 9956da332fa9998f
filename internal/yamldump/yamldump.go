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

// Package yamldump renders a resolved ir.Value as YAML for debugging and
// the sdlcat --dump-yaml flag. It is strictly outbound: nothing on the
// parse path depends on it, and it never reads YAML back in.
package yamldump

import (
	"gopkg.in/yaml.v3"

	"github.com/willabides/sdl/internal/ir"
)

// Dump serializes v as a YAML document.
func Dump(v *ir.Value) ([]byte, error) {
	return yaml.Marshal(toGo(v))
}

func toGo(v *ir.Value) interface{} {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ir.KindNull:
		return nil
	case ir.KindBool:
		return v.Bool
	case ir.KindInt:
		return v.Int
	case ir.KindFloat:
		return v.Float
	case ir.KindString:
		return v.Str
	case ir.KindRef:
		return map[string]interface{}{"ref": v.RefTarget}
	case ir.KindArray:
		out := make([]interface{}, len(v.Array))
		for i, item := range v.Array {
			out[i] = toGo(item)
		}
		return out
	case ir.KindObject:
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, f := range v.Object {
			keyNode := &yaml.Node{}
			_ = keyNode.Encode(f.Key)
			valNode := &yaml.Node{}
			_ = valNode.Encode(toGo(f.Value))
			m.Content = append(m.Content, keyNode, valNode)
		}
		return m
	default:
		return nil
	}
}
