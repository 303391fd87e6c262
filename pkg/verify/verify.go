// Package verify holds the assertions applied to the most recent occ
// Result. Every function is a pure check returning a fail.AssertionError.
package verify

import (
	"fmt"
	"strings"

	"github.com/loykin/occaccept/pkg/fail"
	"github.com/loykin/occaccept/pkg/occ"
)

// Success requires exit code 0 and no exceptions on stderr.
func Success(r occ.Result) error {
	exceptions := r.Exceptions()
	if r.ExitCode != 0 {
		msg := fmt.Sprintf("The command was not successful, exit code was %d.\nstdOut was: '%s'\nstdErr was: '%s'\n",
			r.ExitCode, r.Stdout, r.Stderr)
		if len(exceptions) > 0 {
			msg += " Exceptions: " + strings.Join(exceptions, ", ")
		}
		return fail.Assertf("%s", msg)
	}
	if len(exceptions) > 0 {
		return fail.Assertf("The command was successful but triggered exceptions: %s", strings.Join(exceptions, ", "))
	}
	return nil
}

// FailedWithExitCode requires exactly the given exit code.
func FailedWithExitCode(r occ.Result, code int) error {
	if r.ExitCode != code {
		return fail.Assertf("The command was expected to fail with exit code %d but got %d", code, r.ExitCode)
	}
	return nil
}

// FailedWithException requires an exception whose text equals text.
func FailedWithException(r occ.Result, text string) error {
	exceptions := r.Exceptions()
	if len(exceptions) == 0 {
		return fail.Assertf("The command did not throw any exceptions")
	}
	for _, e := range exceptions {
		if e == text {
			return nil
		}
	}
	return fail.Mismatch(fmt.Sprintf("The command did not throw any exception with the text '%s'", text), text, exceptions)
}

// OutputContains requires at least one line of the stream containing text.
func OutputContains(r occ.Result, s occ.Stream, text string) error {
	out := r.Output(s)
	if len(occ.FindLines(out, text)) == 0 {
		return fail.Assertf("The command output did not contain the expected text on %s '%s'\nThe command output on %s was:\n%s",
			s, text, s, out)
	}
	return nil
}

// OutputTableContains requires every value to appear on some stdout line.
func OutputTableContains(r occ.Result, values []string) error {
	var missing []string
	for _, v := range values {
		if len(occ.FindLines(r.Stdout, v)) == 0 {
			missing = append(missing, "Value: "+v+" not found")
		}
	}
	if len(missing) > 0 {
		return fail.Assertf("%s", strings.Join(missing, "\n"))
	}
	return nil
}

// JSONOutputEmpty requires stdout to be an empty JSON list and stderr to
// be empty.
func JSONOutputEmpty(r occ.Result) error {
	if got := strings.TrimSpace(r.Stdout); got != "[]" {
		return fail.Mismatch("The occ command JSON output is not empty", "[]", got)
	}
	if r.Stderr != "" {
		return fail.Mismatch("The occ command wrote to stderr", "", r.Stderr)
	}
	return nil
}
