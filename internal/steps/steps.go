// Package steps binds Gherkin step phrases to OCS calls and occ
// invocations. Every step reads and writes the per-scenario state held by a
// scenario.Context; nothing is kept between scenarios.
package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cucumber/godog"
	"github.com/loykin/occaccept/internal/common"
	"github.com/loykin/occaccept/internal/ocs"
	"github.com/loykin/occaccept/internal/scenario"
	"github.com/loykin/occaccept/pkg/fail"
	"github.com/loykin/occaccept/pkg/occ"
	"github.com/loykin/occaccept/pkg/pathres"
	"github.com/loykin/occaccept/pkg/verify"
)

// Registrar is the part of *godog.ScenarioContext the step groups use.
type Registrar interface {
	Step(expr, stepFunc interface{})
}

// Deps are the collaborators shared by all scenarios of a run.
type Deps struct {
	Client   *ocs.Client
	Runner   occ.Runner
	Resolver pathres.Resolver
}

// Steps implements every step of one scenario.
type Steps struct {
	deps Deps
	sc   *scenario.Context
	log  *common.Logger
}

// New returns the steps of the scenario sc.
func New(deps Deps, sc *scenario.Context) *Steps {
	return &Steps{
		deps: deps,
		sc:   sc,
		log:  common.GetLogger().WithComponent("steps").WithScenario(sc.Name),
	}
}

// Scenario returns the state the steps operate on.
func (s *Steps) Scenario() *scenario.Context { return s.sc }

// Named sets the scenario name once it is known.
func (s *Steps) Named(name string) {
	s.sc.Name = name
	s.log = common.GetLogger().WithComponent("steps").WithScenario(name)
}

// RegisterAll registers every step group.
func (s *Steps) RegisterAll(r Registrar) {
	s.RegisterAppConfiguration(r)
	s.RegisterTrustedServers(r)
	s.RegisterOcc(r)
	s.RegisterConfig(r)
	s.RegisterBackgroundJobs(r)
	s.RegisterFiles(r)
	s.RegisterStorage(r)
	s.RegisterMaintenance(r)
}

// run invokes cmd, stores its result as the scenario's last result and
// returns it. Only failures to run the command at all are errors.
func (s *Steps) run(ctx context.Context, cmd *occ.Command) (occ.Result, error) {
	return s.runEnv(ctx, cmd, nil)
}

func (s *Steps) runEnv(ctx context.Context, cmd *occ.Command, env map[string]string) (occ.Result, error) {
	logger := s.log.WithCommand(cmd.String())
	logger.Debug("invoking occ command")
	res, err := s.deps.Runner.Run(ctx, cmd, env)
	if err != nil {
		logger.Error("occ command could not be run", "error", err)
		return occ.Result{}, fmt.Errorf("run occ %s: %w", cmd.Verb, err)
	}
	s.sc.SetResult(res)
	logger.Debug("occ command finished", "exit_code", res.ExitCode)
	return res, nil
}

// runLine parses a free-form command taken from step text after inline
// code substitution.
func (s *Steps) runLine(ctx context.Context, line string, env map[string]string) (occ.Result, error) {
	cmd, err := occ.ParseCommand(s.sc.Env.Substitute(line))
	if err != nil {
		return occ.Result{}, fail.WrapStructural(err, "invalid occ command "+line)
	}
	return s.runEnv(ctx, cmd, env)
}

// runSuccess runs cmd and requires it to succeed.
func (s *Steps) runSuccess(ctx context.Context, cmd *occ.Command) (occ.Result, error) {
	res, err := s.run(ctx, cmd)
	if err != nil {
		return res, err
	}
	return res, verify.Success(res)
}

// lastResult returns the result of the most recent command.
func (s *Steps) lastResult() (occ.Result, error) {
	return s.sc.Result()
}

// columnsHash turns a table with a header row into one map per data row.
// Every name in required must be a column.
func columnsHash(table *godog.Table, required ...string) ([]map[string]string, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, fail.Structuralf("table has no header row")
	}
	header := make([]string, len(table.Rows[0].Cells))
	for i, c := range table.Rows[0].Cells {
		header[i] = strings.TrimSpace(c.Value)
	}
	for _, name := range required {
		found := false
		for _, h := range header {
			if h == name {
				found = true
				break
			}
		}
		if !found {
			return nil, fail.Structuralf("table must have column %q, got %v", name, header)
		}
	}
	rows := make([]map[string]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		m := make(map[string]string, len(header))
		for i, c := range row.Cells {
			if i < len(header) {
				m[header[i]] = c.Value
			}
		}
		rows = append(rows, m)
	}
	return rows, nil
}
