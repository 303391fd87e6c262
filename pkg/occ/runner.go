package occ

import (
	"context"
	"time"
)

// Runner executes one occ command. There is no retry: one call is one
// invocation producing one Result. A non-zero exit code is a Result, not an
// error; errors mean the command could not be run at all.
type Runner interface {
	Run(ctx context.Context, cmd *Command, env map[string]string) (Result, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, cmd *Command, env map[string]string) (Result, error)

func (f RunnerFunc) Run(ctx context.Context, cmd *Command, env map[string]string) (Result, error) {
	return f(ctx, cmd, env)
}

// Observer is told about every invocation made through an Observed runner.
type Observer func(ctx context.Context, cmd *Command, res Result, elapsed time.Duration, err error)

// Observe wraps r so that fn sees each invocation after it completes.
func Observe(r Runner, fn Observer) Runner {
	if fn == nil {
		return r
	}
	return RunnerFunc(func(ctx context.Context, cmd *Command, env map[string]string) (Result, error) {
		start := time.Now()
		res, err := r.Run(ctx, cmd, env)
		fn(ctx, cmd, res, time.Since(start), err)
		return res, err
	})
}
