// Package diag defines the breadcrumb error records produced by the schema
// validator, the parameter mixer and the dependency window resolver.
//
// Expected failures are returned as data (a List of *Error), never raised.
// Each record is an ordered trail of strings, outermost context first and the
// message last, so that callers can render multi-line reports without parsing.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Class represents the classification of an error record.
type Class string

const (
	// ClassSchema indicates the schema definition itself is malformed.
	ClassSchema Class = "schema"

	// ClassValue indicates a well-formed schema rejected a value.
	ClassValue Class = "value"

	// ClassParam indicates a parameter layer referenced a missing dictionary key.
	ClassParam Class = "param"

	// ClassDependency indicates a dependency window could not be satisfied.
	ClassDependency Class = "dependency"

	// ClassDuplicate indicates a name was used more than once in one invocation.
	ClassDuplicate Class = "duplicate"

	// ClassSummary marks the summary record added by Summarize.
	ClassSummary Class = "summary"

	// ClassInternal indicates an unexpected fault converted into a record.
	ClassInternal Class = "internal"
)

// Error is a single breadcrumb record.
type Error struct {
	// Class is the error classification.
	Class Class `json:"class" yaml:"class"`

	// Trail is the ordered breadcrumb; the last element is the message.
	Trail []string `json:"trail" yaml:"trail"`

	// Stack is the captured goroutine stack for internal faults.
	Stack string `json:"stack,omitempty" yaml:"stack,omitempty"`

	// Cause is the underlying error, if any.
	Cause error `json:"-" yaml:"-"`
}

// New creates a record of the given class from trail elements.
func New(class Class, trail ...string) *Error {
	t := make([]string, len(trail))
	copy(t, trail)
	return &Error{Class: class, Trail: t}
}

// Newf creates a record whose last trail element is a formatted message.
func Newf(class Class, trail []string, format string, args ...interface{}) *Error {
	t := make([]string, 0, len(trail)+1)
	t = append(t, trail...)
	t = append(t, fmt.Sprintf(format, args...))
	return &Error{Class: class, Trail: t}
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := strings.Join(e.Trail, ": ")
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Class, msg, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Class, msg)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same class.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Class == t.Class
}

// Message returns the last trail element.
func (e *Error) Message() string {
	if len(e.Trail) == 0 {
		return ""
	}
	return e.Trail[len(e.Trail)-1]
}

// Within returns a copy of the record with prefix prepended to its trail.
func (e *Error) Within(prefix ...string) *Error {
	t := make([]string, 0, len(prefix)+len(e.Trail))
	t = append(t, prefix...)
	t = append(t, e.Trail...)
	return &Error{Class: e.Class, Trail: t, Stack: e.Stack, Cause: e.Cause}
}

// WithCause attaches an underlying error.
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// List is an ordered sequence of records.
type List []*Error

// Add appends a record and returns the list.
func (l List) Add(e *Error) List {
	return append(l, e)
}

// Within returns a copy of the list with prefix prepended to every trail.
func (l List) Within(prefix ...string) List {
	if len(l) == 0 {
		return nil
	}
	out := make(List, len(l))
	for i, e := range l {
		out[i] = e.Within(prefix...)
	}
	return out
}

// Trails returns the nested string form of the list.
func (l List) Trails() [][]string {
	out := make([][]string, len(l))
	for i, e := range l {
		out[i] = append([]string(nil), e.Trail...)
	}
	return out
}

// Count returns the number of records of the given class.
func (l List) Count(class Class) int {
	n := 0
	for _, e := range l {
		if e.Class == class {
			n++
		}
	}
	return n
}

// Err returns nil for an empty list, otherwise an error wrapping every record.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	errs := make([]error, len(l))
	for i, e := range l {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// Summarize returns the list preceded by one summary record carrying the
// error count. The records themselves are not altered. An empty list stays
// empty.
func Summarize(title string, l List) List {
	if len(l) == 0 {
		return nil
	}
	out := make(List, 0, len(l)+1)
	out = append(out, New(ClassSummary, title, fmt.Sprintf("%d error(s)", len(l))))
	return append(out, l...)
}

// Internal converts a recovered panic value into a record.
func Internal(trail []string, recovered interface{}, stack []byte) *Error {
	e := Newf(ClassInternal, trail, "internal error: %v", recovered)
	e.Stack = string(stack)
	if err, ok := recovered.(error); ok {
		e.Cause = err
	}
	return e
}

// IsClass reports whether err is or wraps an *Error of the given class.
func IsClass(err error, class Class) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Class == class
	}
	return false
}
