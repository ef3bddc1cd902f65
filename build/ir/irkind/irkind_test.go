// Copyright 2024 Google LLC
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

package irkind_test

import (
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/setir/build/ir/irkind"
)

func TestKind(t *testing.T) {
	for k := irkind.Invalid; k <= irkind.Max; k++ {
		valid := k != irkind.Invalid && k != irkind.Max
		if got := irkind.IsValid(k); got != valid {
			t.Errorf("IsValid(%s)=%v but want %v", k, got, valid)
		}
		if valid && k.String() == "invalid" {
			t.Errorf("kind %d has no name", k)
		}
	}
}

func TestDType(t *testing.T) {
	tests := []struct {
		ident string
		want  dtype.DataType
	}{
		{ident: "int", want: dtype.Int32},
		{ident: "float", want: dtype.Float64},
		{ident: "bool", want: dtype.Invalid},
	}
	for _, test := range tests {
		got := irkind.DTypeFromString(test.ident)
		if got != test.want {
			t.Errorf("DTypeFromString(%q)=%s but want %s", test.ident, got, test.want)
		}
		if !irkind.IsSupportedDType(got) {
			continue
		}
		if back := irkind.DTypeString(got); back != test.ident {
			t.Errorf("DTypeString(%s)=%q but want %q", got, back, test.ident)
		}
	}
}
