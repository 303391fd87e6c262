package steps

import (
	"context"

	"github.com/cucumber/godog"
	"github.com/loykin/occaccept/internal/util"
	"github.com/loykin/occaccept/pkg/occ"
	"github.com/loykin/occaccept/pkg/verify"
)

// RegisterOcc registers the generic occ invocation and result steps.
func (s *Steps) RegisterOcc(r Registrar) {
	r.Step(`^the administrator invokes occ command "([^"]*)"$`, s.invokeCommand)
	r.Step(`^the administrator has invoked occ command "([^"]*)"$`, s.hasInvokedCommand)
	r.Step(`^the administrator invokes occ command "([^"]*)" with environment variable "([^"]*)" set to "([^"]*)"$`, s.invokeCommandWithEnv)
	r.Step(`^the administrator has invoked occ command "([^"]*)" with environment variable "([^"]*)" set to "([^"]*)"$`, s.hasInvokedCommandWithEnv)

	r.Step(`^the command should have been successful$`, s.commandShouldHaveSucceeded)
	r.Step(`^the command should have failed with exit code ([0-9]+)$`, s.commandShouldHaveFailedWithExitCode)
	r.Step(`^the command should have failed with exception text "([^"]*)"$`, s.commandShouldHaveFailedWithException)
	r.Step(`^the command output should contain the text ((?:'[^']*')|(?:"[^"]*"))$`, func(text string) error {
		return s.outputShouldContain(occ.Stdout, text)
	})
	r.Step(`^the command error output should contain the text ((?:'[^']*')|(?:"[^"]*"))$`, func(text string) error {
		return s.outputShouldContain(occ.Stderr, text)
	})
	r.Step(`^the command output table should contain the following text:$`, s.outputTableShouldContain)
	r.Step(`^the occ command JSON output should be empty$`, s.jsonOutputShouldBeEmpty)
}

func (s *Steps) invokeCommand(ctx context.Context, line string) error {
	_, err := s.runLine(ctx, line, nil)
	return err
}

func (s *Steps) hasInvokedCommand(ctx context.Context, line string) error {
	res, err := s.runLine(ctx, line, nil)
	if err != nil {
		return err
	}
	return verify.Success(res)
}

func (s *Steps) invokeCommandWithEnv(ctx context.Context, line, name, value string) error {
	_, err := s.runLine(ctx, line, map[string]string{name: s.sc.Env.Substitute(value)})
	return err
}

func (s *Steps) hasInvokedCommandWithEnv(ctx context.Context, line, name, value string) error {
	res, err := s.runLine(ctx, line, map[string]string{name: s.sc.Env.Substitute(value)})
	if err != nil {
		return err
	}
	return verify.Success(res)
}

func (s *Steps) commandShouldHaveSucceeded() error {
	res, err := s.lastResult()
	if err != nil {
		return err
	}
	return verify.Success(res)
}

func (s *Steps) commandShouldHaveFailedWithExitCode(code int) error {
	res, err := s.lastResult()
	if err != nil {
		return err
	}
	return verify.FailedWithExitCode(res, code)
}

func (s *Steps) commandShouldHaveFailedWithException(text string) error {
	res, err := s.lastResult()
	if err != nil {
		return err
	}
	return verify.FailedWithException(res, text)
}

func (s *Steps) outputShouldContain(stream occ.Stream, quoted string) error {
	res, err := s.lastResult()
	if err != nil {
		return err
	}
	return verify.OutputContains(res, stream, util.TrimQuotes(quoted))
}

func (s *Steps) outputTableShouldContain(table *godog.Table) error {
	rows, err := columnsHash(table, "table_column")
	if err != nil {
		return err
	}
	res, err := s.lastResult()
	if err != nil {
		return err
	}
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		values = append(values, row["table_column"])
	}
	return verify.OutputTableContains(res, values)
}

func (s *Steps) jsonOutputShouldBeEmpty() error {
	res, err := s.lastResult()
	if err != nil {
		return err
	}
	return verify.JSONOutputEmpty(res)
}
