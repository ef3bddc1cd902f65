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

	"github.com/pkg/errors"
)

// Categories of errors. Use errors.Is to test the category of an error.
var (
	// ErrPrecondition is the category of errors raised when the input of an
	// operation does not satisfy its contract, for example lowering a
	// statement that has not been flattened.
	ErrPrecondition = errors.New("precondition violation")

	// ErrUnsupported is the category of errors raised for constructs that are
	// well-formed but not implemented yet.
	ErrUnsupported = errors.New("not supported yet")

	// ErrInternal is the category of errors raised when the compiler reaches
	// a state it should never reach. This is always a bug.
	ErrInternal = errors.New("internal error")
)

type categoryError struct {
	category error
	err      error
}

func newCategoryError(category error, format string, a ...any) error {
	return categoryError{
		category: category,
		err:      errors.Errorf(format, a...),
	}
}

// Preconditionf returns an error reporting a violated contract.
func Preconditionf(format string, a ...any) error {
	return newCategoryError(ErrPrecondition, format, a...)
}

// Unsupportedf returns an error reporting a construct not implemented yet.
func Unsupportedf(format string, a ...any) error {
	return newCategoryError(ErrUnsupported, format, a...)
}

// Internalf returns an error reporting a bug in the compiler.
func Internalf(format string, a ...any) error {
	return newCategoryError(ErrInternal, format, a...)
}

// Category returns the category of an error, or nil if the error does not
// belong to any category.
func Category(err error) error {
	for _, cat := range []error{ErrInternal, ErrPrecondition, ErrUnsupported} {
		if errors.Is(err, cat) {
			return cat
		}
	}
	return nil
}

// Error returns a string description of the error.
func (err categoryError) Error() string {
	if err.category == ErrInternal {
		return fmt.Sprintf("%s (this is a bug, please report it): %s", err.category.Error(), err.err.Error())
	}
	return err.category.Error() + ": " + err.err.Error()
}

// Unwrap returns the underlying error and the category.
// The underlying error comes first so that its stack trace is found first.
func (err categoryError) Unwrap() []error {
	return []error{err.err, err.category}
}

// Format writes the error into the state of the formatter.
func (err categoryError) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}
