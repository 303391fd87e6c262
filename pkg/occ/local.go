package occ

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/loykin/occaccept/internal/common"
	"github.com/loykin/occaccept/internal/constants"
)

// LocalRunner executes occ as a child process on the test host, for runs
// where the server lives on the same machine.
type LocalRunner struct {
	// Binary is the interpreter, "php" by default.
	Binary string
	// Prefix is placed before the command argv, ["occ"] by default.
	Prefix []string
	// Dir is the server root the process runs in.
	Dir string
}

// NewLocalRunner runs "php occ ..." inside serverRoot.
func NewLocalRunner(php, serverRoot string) *LocalRunner {
	if php == "" {
		php = constants.DefaultPHPBinary
	}
	return &LocalRunner{Binary: php, Prefix: []string{constants.DefaultOccScript}, Dir: serverRoot}
}

// Run starts the process and waits for it. env entries override the
// inherited environment.
func (l *LocalRunner) Run(ctx context.Context, cmd *Command, env map[string]string) (Result, error) {
	argv := append(append([]string{}, l.Prefix...), cmd.Args()...)
	logger := common.GetLogger().WithComponent("occ-local").WithCommand(cmd.String())

	// #nosec G204 -- argv is built from typed arguments, no shell is involved
	c := exec.CommandContext(ctx, l.Binary, argv...)
	c.Dir = l.Dir
	if len(env) > 0 {
		c.Env = os.Environ()
		for k, v := range env {
			c.Env = append(c.Env, k+"="+v)
		}
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			logger.Error("failed to start occ", "error", err)
			return Result{}, fmt.Errorf("occ: run %s: %w", l.Binary, err)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	logger.Debug("occ command finished", "exit_code", res.ExitCode)
	return res, nil
}
