package fail

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// AssertionError reports an expected condition that did not hold.
// It signals a product defect and aborts the current step.
type AssertionError struct {
	Message  string
	Expected interface{}
	Actual   interface{}
	cause    error
}

func (e *AssertionError) Error() string {
	if e.Expected == nil && e.Actual == nil {
		return e.Message
	}
	return fmt.Sprintf("%s\nexpected: %v\nactual:   %v", e.Message, e.Expected, e.Actual)
}

func (e *AssertionError) Unwrap() error { return e.cause }

// StructuralError reports a misconfigured scenario, e.g. a capability path
// segment that does not exist or a mount name that was never created.
type StructuralError struct {
	Message string
	cause   error
}

func (e *StructuralError) Error() string { return e.Message }

func (e *StructuralError) Unwrap() error { return e.cause }

// Assertf returns an AssertionError with a formatted message and a stack.
func Assertf(format string, args ...interface{}) error {
	return errors.WithStack(&AssertionError{Message: fmt.Sprintf(format, args...)})
}

// Mismatch returns an AssertionError carrying expected and actual values.
func Mismatch(msg string, expected, actual interface{}) error {
	return errors.WithStack(&AssertionError{Message: msg, Expected: expected, Actual: actual})
}

// Structuralf returns a StructuralError with a formatted message and a stack.
func Structuralf(format string, args ...interface{}) error {
	return errors.WithStack(&StructuralError{Message: fmt.Sprintf(format, args...)})
}

// WrapStructural marks err as a structural error.
func WrapStructural(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&StructuralError{Message: msg + ": " + err.Error(), cause: err})
}

// IsAssertion reports whether err (or any error it wraps) is an AssertionError.
func IsAssertion(err error) bool {
	var a *AssertionError
	return errors.As(err, &a)
}

// IsStructural reports whether err (or any error it wraps) is a StructuralError.
func IsStructural(err error) bool {
	var s *StructuralError
	return errors.As(err, &s)
}

// T collects testify assertion failures so glue code can use assert.* and
// return a plain error to the step runner.
//
//	t := &fail.T{}
//	assert.Equal(t, "30", got)
//	return t.Err()
type T struct {
	messages []string
}

// Errorf implements assert.TestingT.
func (t *T) Errorf(format string, args ...interface{}) {
	t.messages = append(t.messages, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Failed reports whether any assertion failed.
func (t *T) Failed() bool { return len(t.messages) > 0 }

// Err returns nil when all assertions held, otherwise an AssertionError
// joining every failure message.
func (t *T) Err() error {
	if !t.Failed() {
		return nil
	}
	return errors.WithStack(&AssertionError{Message: strings.Join(t.messages, "\n")})
}
