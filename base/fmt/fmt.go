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


// Package fmt formats the text representation of IR trees.
package fmt

import (
	"fmt"
	"strconv"
	"strings"
)

// Number prefixes every line of a string with its line number.
// Numbers are padded with zeros to the width of the largest number.
func Number(x string) string {
	lines := strings.SplitAfter(x, "\n")
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	width := len(strconv.Itoa(len(lines)))
	var s strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&s, "%0*d %s", width, i+1, line)
	}
	return s.String()
}

// IndentWith prefixes every non-empty line of a string.
func IndentWith(prefix, x string) string {
	var s strings.Builder
	for line := range strings.Lines(x) {
		if strings.TrimSpace(line) != "" {
			s.WriteString(prefix)
		}
		s.WriteString(line)
	}
	return s.String()
}
