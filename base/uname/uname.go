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


// Package uname generates names not used elsewhere in a tree.
package uname

import "strconv"

// Unique generates unique names.
type Unique struct {
	used map[string]bool
	// last suffix returned for each root.
	last map[string]int
}

// New returns a generator with no name in use.
func New() *Unique {
	return &Unique{
		used: make(map[string]bool),
		last: make(map[string]int),
	}
}

// Register names already in use. They are never returned by Name.
func (n *Unique) Register(names ...string) {
	for _, name := range names {
		n.used[name] = true
	}
}

// Name returns root if it is not in use. Otherwise, it returns root
// followed by the smallest suffix greater than the last suffix returned
// for root such that the name is not in use.
func (n *Unique) Name(root string) string {
	name := root
	for suffix := n.last[root]; n.used[name]; name = root + strconv.Itoa(suffix) {
		suffix++
		n.last[root] = suffix
	}
	n.used[name] = true
	return name
}
