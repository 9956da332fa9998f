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

package yamldump

import (
	"testing"

	"github.com/stretchr/testify/require"
	goyaml "gopkg.in/yaml.v3"

	"github.com/willabides/sdl/internal/ir"
)

func TestDumpFlatObject(t *testing.T) {
	v := &ir.Value{Kind: ir.KindObject, Object: []ir.Field{
		{Key: "name", Value: ir.String("widget")},
		{Key: "count", Value: ir.Int(3)},
	}}
	out, err := Dump(v)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, goyaml.Unmarshal(out, &decoded))
	require.Equal(t, "widget", decoded["name"])
	require.Equal(t, 3, decoded["count"])
}

func TestDumpPreservesKeyOrder(t *testing.T) {
	v := &ir.Value{Kind: ir.KindObject, Object: []ir.Field{
		{Key: "z", Value: ir.Int(1)},
		{Key: "a", Value: ir.Int(2)},
	}}
	out, err := Dump(v)
	require.NoError(t, err)

	zIdx := indexOf(out, "z:")
	aIdx := indexOf(out, "a:")
	require.True(t, zIdx < aIdx)
}

func indexOf(b []byte, s string) int {
	for i := range b {
		if i+len(s) <= len(b) && string(b[i:i+len(s)]) == s {
			return i
		}
	}
	return -1
}
