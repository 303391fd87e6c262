// Package suite wires the step groups into godog. Every scenario gets its
// own scenario.Context and Steps; the OCS client, occ runner and journal
// are shared by the whole run.
package suite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cucumber/godog"
	"github.com/loykin/occaccept/internal/common"
	"github.com/loykin/occaccept/internal/config"
	"github.com/loykin/occaccept/internal/env"
	"github.com/loykin/occaccept/internal/ocs"
	"github.com/loykin/occaccept/internal/scenario"
	"github.com/loykin/occaccept/internal/steps"
	"github.com/loykin/occaccept/internal/store"
	"github.com/loykin/occaccept/internal/wait"
	"github.com/loykin/occaccept/pkg/occ"
	"github.com/loykin/occaccept/pkg/pathres"
)

// Deps are the collaborators shared by all scenarios.
type Deps struct {
	Client *ocs.Client
	Runner occ.Runner
	// Journal records runs and commands; nil disables recording.
	Journal *store.Journal
}

// Suite builds godog scenario contexts.
type Suite struct {
	cfg   *config.ConfigDoc
	deps  Deps
	base  *env.Env
	users scenario.Users
	log   *common.Logger
}

// New returns a Suite for cfg. cfg must have had ApplyDefaults called.
func New(cfg *config.ConfigDoc, deps Deps) *Suite {
	return &Suite{
		cfg:   cfg,
		deps:  deps,
		base:  cfg.BaseEnv(),
		users: cfg.ScenarioUsers(),
		log:   common.GetLogger().WithComponent("suite"),
	}
}

// runner returns the shared runner, journaling every invocation under the
// scenario's run id.
func (s *Suite) runner(sc *scenario.Context) occ.Runner {
	if s.deps.Journal == nil {
		return s.deps.Runner
	}
	j := s.deps.Journal
	return occ.Observe(s.deps.Runner, func(ctx context.Context, cmd *occ.Command, res occ.Result, _ time.Duration, err error) {
		c := store.Command{
			RunID:    sc.ID,
			Command:  common.MaskSensitiveData(cmd.String()),
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
		if err != nil {
			c.ExitCode = -1
			c.Stderr = err.Error()
		}
		if jerr := j.RecordCommand(ctx, c, time.Now()); jerr != nil {
			s.log.Warn("could not journal occ command", "error", jerr)
		}
	})
}

// NewSteps returns the steps bound to a fresh scenario.Context.
func (s *Suite) NewSteps() *steps.Steps {
	sc := scenario.New("", s.base.ForScenario(), s.users)
	return steps.New(steps.Deps{
		Client:   s.deps.Client,
		Runner:   s.runner(sc),
		Resolver: pathres.Resolver{Separator: s.cfg.Server.CapabilitySeparator},
	}, sc)
}

// InitializeScenario is the godog ScenarioInitializer. godog calls it once
// per scenario.
func (s *Suite) InitializeScenario(ctx *godog.ScenarioContext) {
	st := s.NewSteps()
	st.RegisterAll(ctx)

	ctx.Before(func(ctx context.Context, pickle *godog.Scenario) (context.Context, error) {
		st.Named(pickle.Name)
		sc := st.Scenario()
		if s.deps.Journal != nil {
			run := store.Run{ID: sc.ID, Scenario: pickle.Name, Feature: pickle.Uri, Status: store.StatusRunning}
			if err := s.deps.Journal.StartRun(ctx, run, time.Now()); err != nil {
				s.log.Warn("could not journal scenario start", "scenario", pickle.Name, "error", err)
			}
		}
		return ctx, st.BeforeScenario(ctx)
	})

	ctx.StepContext().Before(func(ctx context.Context, step *godog.Step) (context.Context, error) {
		s.log.WithScenario(st.Scenario().Name).WithStep(step.Text).Debug("step started")
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, pickle *godog.Scenario, scenarioErr error) (context.Context, error) {
		teardownErr := st.AfterScenario(ctx)
		if teardownErr != nil {
			teardownErr = fmt.Errorf("teardown: %w", teardownErr)
		}
		if s.deps.Journal != nil {
			status, text := store.StatusPassed, ""
			if all := errors.Join(scenarioErr, teardownErr); all != nil {
				status, text = store.StatusFailed, all.Error()
			}
			if err := s.deps.Journal.FinishRun(ctx, st.Scenario().ID, status, text, time.Now()); err != nil {
				s.log.Warn("could not journal scenario result", "scenario", pickle.Name, "error", err)
			}
		}
		return ctx, teardownErr
	})
}

// Options returns the godog options taken from the suite config.
func (s *Suite) Options() godog.Options {
	return godog.Options{
		Format:        s.cfg.Suite.Format,
		Paths:         s.cfg.Suite.Paths,
		Tags:          s.cfg.Suite.Tags,
		Strict:        s.cfg.Strict(),
		StopOnFailure: s.cfg.Suite.StopOnFailure,
		Concurrency:   1,
	}
}

// TestSuite returns the godog suite for opts.
func (s *Suite) TestSuite(opts godog.Options) godog.TestSuite {
	return godog.TestSuite{
		Name:                "occaccept",
		ScenarioInitializer: s.InitializeScenario,
		Options:             &opts,
	}
}

// Open builds the collaborators from cfg and returns a Suite. The close
// function releases the journal and is safe to call when none was opened.
func Open(ctx context.Context, cfg *config.ConfigDoc) (*Suite, func(), error) {
	client, err := cfg.OCSClient()
	if err != nil {
		return nil, nil, err
	}
	deps := Deps{Client: client, Runner: cfg.Runner(client)}
	closer := func() {}
	if !cfg.Journal.Disabled {
		j, err := store.Open(ctx, cfg.Journal.Config)
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		deps.Journal = j
		closer = func() { _ = j.Close() }
	}
	return New(cfg, deps), closer, nil
}

// Run waits for the server when configured, runs the features and returns
// godog's exit status.
func Run(ctx context.Context, cfg *config.ConfigDoc) (int, error) {
	h, err := cfg.HTTP()
	if err != nil {
		return 1, err
	}
	if err := wait.Until(ctx, h, cfg.Server.BaseURL, cfg.Wait); err != nil {
		return 1, err
	}
	s, closer, err := Open(ctx, cfg)
	if err != nil {
		return 1, err
	}
	defer closer()

	s.log.Info("running features", "paths", cfg.Suite.Paths, "tags", cfg.Suite.Tags, "occ_mode", cfg.Occ.Mode)
	return s.TestSuite(s.Options()).Run(), nil
}
