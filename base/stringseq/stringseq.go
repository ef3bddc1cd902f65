// Package stringseq joins sequences of strings.
package stringseq

import (
	"fmt"
	"iter"
	"strings"
)

// Join concatenates the elements of a sequence. The separator string sep
// is placed between elements in the resulting string.
func Join(seq iter.Seq[string], sep string) string {
	var b strings.Builder
	n := 0
	for s := range seq {
		if n > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s)
		n++
	}
	return b.String()
}

// Strings returns the string representation of a slice of items.
func Strings[T fmt.Stringer](items []T) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, item := range items {
			if !yield(item.String()) {
				return
			}
		}
	}
}

// JoinStringers concatenates the string representation of a slice of items.
func JoinStringers[T fmt.Stringer](items []T, sep string) string {
	return Join(Strings(items), sep)
}
