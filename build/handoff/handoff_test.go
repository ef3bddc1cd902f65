// Copyright 2025 Google LLC
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

package handoff_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/setir/build/fmterr"
	"github.com/gx-org/setir/build/handoff"
	"github.com/gx-org/setir/build/ir"
	irh "github.com/gx-org/setir/build/ir/irhelper"
	"go.uber.org/multierr"
)

func TestParams(t *testing.T) {
	point := irh.Element("Point",
		irh.Field("x", ir.Float()),
		irh.Field("v", irh.Tensor(ir.Float(), ir.RangeDomain(3))),
	)
	points := irh.Var("points", irh.Set(point))
	spring := irh.Element("Spring", irh.Field("k", ir.Float()))
	springs := irh.Var("springs", irh.Set(spring, points, points))
	z := irh.Var("z", ir.Float())
	y := irh.Var("y", irh.Tensor(ir.Float(), ir.SetDomain(points)))
	fn := irh.Func("main",
		irh.Vars(points, springs, y),
		irh.Vars(y, z),
	)
	got, err := handoff.Params(fn)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	want := []handoff.Param{
		{Name: "points", Kind: handoff.Size, DType: dtype.Int32},
		{Name: "points.x", Kind: handoff.Pointer, DType: dtype.Float64},
		{Name: "points.v", Kind: handoff.Pointer, DType: dtype.Float64},
		{Name: "springs", Kind: handoff.Size, DType: dtype.Int32},
		{Name: "springs.k", Kind: handoff.Pointer, DType: dtype.Float64},
		{Name: "springs.endpoints", Kind: handoff.Pointer, DType: dtype.Int32},
		{Name: "y", Kind: handoff.Pointer, DType: dtype.Float64},
		{Name: "z", Kind: handoff.Pointer, DType: dtype.Float64, Result: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected parameters (-want +got):\n%s", diff)
	}
	if size := got[0].ElementSize(); size != 4 {
		t.Errorf("size handle has %d bytes but want 4", size)
	}
	if size := got[1].ElementSize(); size != 8 {
		t.Errorf("float field has %d bytes but want 8", size)
	}
}

func TestParamsErrors(t *testing.T) {
	point := irh.Element("Point", irh.Field("x", ir.Float()))
	p := irh.Var("p", point)
	pair := irh.Var("pair", irh.Tuple(point, 2))
	fn := irh.Func("kernel", irh.Vars(p, pair), nil)
	_, err := handoff.Params(fn)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, fmterr.ErrPrecondition) {
		t.Errorf("got %v but want a precondition error", err)
	}
	if n := len(multierr.Errors(errors.Unwrap(err))); n != 2 {
		t.Errorf("got %d errors but want 2: %v", n, err)
	}
	for _, name := range []string{"kernel", "p of type Point", "pair of type (Point*2)"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not contain %q", err.Error(), name)
		}
	}
}

func TestScalarTypeOf(t *testing.T) {
	tests := []struct {
		dt      dtype.DataType
		want    *ir.ScalarType
		wantErr error
	}{
		{dt: dtype.Int32, want: ir.Int()},
		{dt: dtype.Float64, want: ir.Float()},
		{dt: dtype.Bool, wantErr: fmterr.ErrInternal},
	}
	for ti, test := range tests {
		got, err := handoff.ScalarTypeOf(test.dt)
		if test.wantErr != nil {
			if !errors.Is(err, test.wantErr) {
				t.Errorf("test %d: got error %v but want %v", ti, err, test.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("test %d: %v", ti, err)
			continue
		}
		if got != test.want {
			t.Errorf("test %d: got %s but want %s", ti, got, test.want)
		}
	}
}
