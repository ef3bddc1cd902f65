package stringseq_test

import (
	"slices"
	"strconv"
	"testing"

	"github.com/gx-org/setir/base/stringseq"
)

type num int

func (n num) String() string { return strconv.Itoa(int(n)) }

func TestJoin(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{got: stringseq.Join(slices.Values([]string{}), ","), want: ""},
		{got: stringseq.Join(slices.Values([]string{"a"}), ","), want: "a"},
		{got: stringseq.Join(slices.Values([]string{"a", "b", "c"}), ", "), want: "a, b, c"},
		{got: stringseq.JoinStringers([]num{1, 2, 3}, "*"), want: "1*2*3"},
	}
	for ti, test := range tests {
		if test.got != test.want {
			t.Errorf("test %d: got %q but want %q", ti, test.got, test.want)
		}
	}
}
