// Package occ invokes the server's administrative command line ("occ")
// and captures stdout, stderr and exit code as a Result.
package occ

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// ArgKind tags how an argument is rendered on the command line.
type ArgKind int

const (
	// ArgPositional renders Value as one argument.
	ArgPositional ArgKind = iota
	// ArgFlag renders "--Name" "Value" as two arguments.
	ArgFlag
	// ArgFlagEq renders "--Name=Value" as one argument.
	ArgFlagEq
	// ArgSwitch renders "--Name".
	ArgSwitch
)

// Arg is one typed command argument.
type Arg struct {
	Kind  ArgKind
	Name  string
	Value string
}

// Command is an occ verb plus typed arguments. Values are never re-split,
// so user supplied text cannot inject extra arguments.
type Command struct {
	Verb string
	args []Arg
}

// New starts a command for verb, e.g. New("config:system:get").
func New(verb string) *Command {
	return &Command{Verb: strings.TrimSpace(verb)}
}

func (c *Command) add(a Arg) *Command {
	c.args = append(c.args, a)
	return c
}

// Arg appends positional arguments. Empty values are skipped, which lets
// "trashbin:cleanup <user>" degrade to "all users" when user is "".
func (c *Command) Arg(values ...string) *Command {
	for _, v := range values {
		if v == "" {
			continue
		}
		c.add(Arg{Kind: ArgPositional, Value: v})
	}
	return c
}

// Flag appends "--name value".
func (c *Command) Flag(name, value string) *Command {
	return c.add(Arg{Kind: ArgFlag, Name: name, Value: value})
}

// FlagEq appends "--name=value".
func (c *Command) FlagEq(name, value string) *Command {
	return c.add(Arg{Kind: ArgFlagEq, Name: name, Value: value})
}

// Switch appends "--name".
func (c *Command) Switch(name string) *Command {
	return c.add(Arg{Kind: ArgSwitch, Name: name})
}

// Arguments returns a copy of the typed arguments.
func (c *Command) Arguments() []Arg {
	out := make([]Arg, len(c.args))
	copy(out, c.args)
	return out
}

// Args returns the argv, verb first.
func (c *Command) Args() []string {
	argv := make([]string, 0, len(c.args)*2+1)
	if c.Verb != "" {
		argv = append(argv, c.Verb)
	}
	for _, a := range c.args {
		switch a.Kind {
		case ArgFlag:
			argv = append(argv, "--"+a.Name, a.Value)
		case ArgFlagEq:
			argv = append(argv, "--"+a.Name+"="+a.Value)
		case ArgSwitch:
			argv = append(argv, "--"+a.Name)
		default:
			argv = append(argv, a.Value)
		}
	}
	return argv
}

// String renders a shell-quoted command line.
func (c *Command) String() string {
	return shellquote.Join(c.Args()...)
}

// ParseCommand splits a free-form command line taken from a step, honoring
// shell quotes. All tokens after the verb become positional arguments.
func ParseCommand(line string) (*Command, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return New(""), nil
	}
	c := New(words[0])
	for _, w := range words[1:] {
		c.add(Arg{Kind: ArgPositional, Value: w})
	}
	return c, nil
}
