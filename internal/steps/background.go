package steps

import (
	"context"
	"regexp"
	"strings"

	"github.com/loykin/occaccept/pkg/fail"
	"github.com/loykin/occaccept/pkg/occ"
	"github.com/stretchr/testify/assert"
)

// RegisterBackgroundJobs registers background job steps.
func (s *Steps) RegisterBackgroundJobs(r Registrar) {
	r.Step(`^the administrator changes the background jobs mode to "([^"]*)" using the occ command$`, func(ctx context.Context, mode string) error {
		_, err := s.run(ctx, occ.New("background:"+mode))
		return err
	})
	r.Step(`^the administrator has changed the background jobs mode to "([^"]*)"$`, func(ctx context.Context, mode string) error {
		_, err := s.runSuccess(ctx, occ.New("background:"+mode))
		return err
	})
	r.Step(`^the background jobs mode should be "([^"]*)"$`, func(ctx context.Context, mode string) error {
		return s.appValueShouldBe(ctx, "core", "backgroundjobs_mode", mode)
	})
	r.Step(`^the administrator gets all the jobs in the background queue using the occ command$`, func(ctx context.Context) error {
		_, err := s.run(ctx, occ.New("background:queue:status"))
		return err
	})
	r.Step(`^the administrator deletes last background job "([^"]*)" using the occ command$`, s.deleteLastBackgroundJob)
	r.Step(`^the last deleted background job "([^"]*)" should not be listed in the background jobs queue$`, s.lastDeletedJobShouldNotBeListed)
}

// appValueShouldBe runs config:app:get as the step's action and compares
// its trimmed stdout.
func (s *Steps) appValueShouldBe(ctx context.Context, app, key, expected string) error {
	res, err := s.run(ctx, occ.New("config:app:get").Arg(app, key))
	if err != nil {
		return err
	}
	t := &fail.T{}
	assert.Equal(t, expected, strings.TrimSpace(res.Stdout), "%s %s", app, key)
	return t.Err()
}

var firstNumber = regexp.MustCompile(`\d+`)

// lastJobID lists the queue and returns the id on the last line mentioning
// job, "" when there is none.
func (s *Steps) lastJobID(ctx context.Context, job string) (string, error) {
	res, err := s.run(ctx, occ.New("background:queue:status"))
	if err != nil {
		return "", err
	}
	lines := occ.FindLines(res.Stdout, job)
	if len(lines) == 0 {
		return "", nil
	}
	return firstNumber.FindString(lines[len(lines)-1]), nil
}

func (s *Steps) deleteLastBackgroundJob(ctx context.Context, job string) error {
	id, err := s.lastJobID(ctx, job)
	if err != nil {
		return err
	}
	if id == "" {
		return fail.Structuralf("Couldn't find jobId for given job: %s", job)
	}
	if _, err := s.run(ctx, occ.New("background:queue:delete").Arg(id)); err != nil {
		return err
	}
	s.sc.SetLastDeletedJobID(id)
	return nil
}

func (s *Steps) lastDeletedJobShouldNotBeListed(ctx context.Context, job string) error {
	deleted := s.sc.LastDeletedJobID()
	id, err := s.lastJobID(ctx, job)
	if err != nil {
		return err
	}
	if deleted != "" && id == deleted {
		return fail.Assertf("job %s with jobId %s was not expected to be listed in background queue, but was", job, deleted)
	}
	return nil
}
