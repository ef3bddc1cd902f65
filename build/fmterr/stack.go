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

package fmterr

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// format writes an error. With %+v, the message is followed by the stack
// trace of the first error in the chain recording one.
func format(err error, s fmt.State, verb rune) {
	switch {
	case verb == 'q':
		fmt.Fprintf(s, "%q", err.Error())
		return
	case verb != 'v' && verb != 's':
		return
	}
	io.WriteString(s, err.Error())
	if verb != 'v' || !s.Flag('+') {
		return
	}
	var st stackTracer
	if errors.As(err, &st) {
		fmt.Fprintf(s, "\nError generated at:%+v\n", st.StackTrace())
	}
}
