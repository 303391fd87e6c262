package occ

import (
	"regexp"
	"strings"
)

// Result is the outcome of one occ invocation. It is a value: once
// returned it is never modified.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// exceptionMarker matches the Symfony console header printed above an
// exception message, e.g. "  [InvalidArgumentException]  ".
var exceptionMarker = regexp.MustCompile(`\[[A-Za-z\\_]*Exception\]`)

// Exceptions returns the exception texts reported on stderr: the line that
// follows each exception header, trimmed.
func (r Result) Exceptions() []string {
	var out []string
	capture := false
	for _, line := range strings.Split(r.Stderr, "\n") {
		if exceptionMarker.MatchString(line) {
			capture = true
			continue
		}
		if capture {
			out = append(out, strings.TrimSpace(line))
			capture = false
		}
	}
	return out
}

// Stream selects stdout or stderr of a Result.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Output returns the text of the selected stream.
func (r Result) Output(s Stream) string {
	if s == Stderr {
		return r.Stderr
	}
	return r.Stdout
}

// FindLines returns the lines of text that contain needle.
func FindLines(text, needle string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, needle) {
			out = append(out, line)
		}
	}
	return out
}
