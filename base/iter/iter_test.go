// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package iter_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/setir/base/iter"
)

func TestAll(t *testing.T) {
	got := slices.Collect(iter.All(
		[]string{"a", "b", "c"},
		[]string{"d", "e", "f"},
	))
	want := []string{"a", "b", "c", "d", "e", "f"}
	if !cmp.Equal(got, want) {
		t.Errorf("got %v but want %v", got, want)
	}
}

func TestFilter(t *testing.T) {
	even := func(i int) bool { return i%2 == 0 }
	got := slices.Collect(iter.Filter(iter.All([]int{1, 2, 3}, []int{4, 5, 6}), even))
	want := []int{2, 4, 6}
	if !cmp.Equal(got, want) {
		t.Errorf("got %v but want %v", got, want)
	}
}

func TestOfType(t *testing.T) {
	seq := iter.All([]any{1, "a", 2, "b", 3.0})
	if got, want := slices.Collect(iter.OfType[string](seq)), []string{"a", "b"}; !cmp.Equal(got, want) {
		t.Errorf("got %v but want %v", got, want)
	}
	if got, want := slices.Collect(iter.OfType[int](seq)), []int{1, 2}; !cmp.Equal(got, want) {
		t.Errorf("got %v but want %v", got, want)
	}
}

func TestFirst(t *testing.T) {
	visited := 0
	seq := func(yield func(int) bool) {
		for i := 10; i < 20; i++ {
			visited++
			if !yield(i) {
				return
			}
		}
	}
	first, ok := iter.First(seq)
	if !ok || first != 10 {
		t.Errorf("got %d,%v but want 10,true", first, ok)
	}
	if visited != 1 {
		t.Errorf("sequence visited %d elements but want 1", visited)
	}
	if _, ok := iter.First(iter.All[int]()); ok {
		t.Errorf("empty sequence returned a first element")
	}
}
