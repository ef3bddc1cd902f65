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

// Package iter provides common iterators.
package iter

import "iter"

// All iterates over the element of multiple slices.
func All[T any](slices ...[]T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, slice := range slices {
			for _, el := range slice {
				if !yield(el) {
					return
				}
			}
		}
	}
}

// Filter excludes the elements of a sequence for which f returns false.
func Filter[T any](seq iter.Seq[T], f func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for el := range seq {
			if !f(el) {
				continue
			}
			if !yield(el) {
				return
			}
		}
	}
}

// OfType iterates over the elements of a sequence of type T.
func OfType[T, S any](seq iter.Seq[S]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for el := range seq {
			elT, ok := any(el).(T)
			if !ok {
				continue
			}
			if !yield(elT) {
				return
			}
		}
	}
}

// First returns the first element of a sequence.
// The rest of the sequence is not consumed.
func First[T any](seq iter.Seq[T]) (first T, ok bool) {
	for el := range seq {
		return el, true
	}
	return
}
