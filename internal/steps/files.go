package steps

import (
	"context"
	"strings"

	"github.com/loykin/occaccept/pkg/fail"
	"github.com/loykin/occaccept/pkg/occ"
	"github.com/stretchr/testify/assert"
)

// RegisterFiles registers file scan, trashbin and versions steps.
func (s *Steps) RegisterFiles(r Registrar) {
	scans := []struct {
		when, given string
		cmd         func(arg string) *occ.Command
	}{
		{
			`^the administrator scans the filesystem for all users using the occ command$`,
			`^the administrator has scanned the filesystem for all users$`,
			func(string) *occ.Command { return occ.New("files:scan").Switch("all") },
		},
		{
			`^the administrator scans the filesystem for user "([^"]*)" using the occ command$`,
			`^the administrator has scanned the filesystem for user "([^"]*)"$`,
			func(user string) *occ.Command { return occ.New("files:scan").Arg(user) },
		},
		{
			`^the administrator scans the filesystem in path "([^"]*)" using the occ command$`,
			`^the administrator scans the filesystem in path "([^"]*)"$`,
			func(path string) *occ.Command { return occ.New("files:scan").FlagEq("path", path) },
		},
		{
			`^the administrator scans the filesystem for group "([^"]*)" using the occ command$`,
			`^the administrator has scanned the filesystem for group "([^"]*)"$`,
			func(group string) *occ.Command { return occ.New("files:scan").FlagEq("group", group) },
		},
		{
			`^the administrator scans the filesystem for groups list "([^"]*)" using the occ command$`,
			`^the administrator has scanned the filesystem for groups list "([^"]*)"$`,
			func(groups string) *occ.Command { return occ.New("files:scan").FlagEq("groups", groups) },
		},
	}
	for _, sc := range scans {
		build := sc.cmd
		if strings.Contains(sc.when, "(") {
			r.Step(sc.when, func(ctx context.Context, arg string) error {
				_, err := s.run(ctx, build(arg))
				return err
			})
			r.Step(sc.given, func(ctx context.Context, arg string) error {
				_, err := s.runSuccess(ctx, build(arg))
				return err
			})
			continue
		}
		r.Step(sc.when, func(ctx context.Context) error {
			_, err := s.run(ctx, build(""))
			return err
		})
		r.Step(sc.given, func(ctx context.Context) error {
			_, err := s.runSuccess(ctx, build(""))
			return err
		})
	}

	r.Step(`^the administrator cleanups the filesystem for all users using the occ command$`, func(ctx context.Context) error {
		_, err := s.run(ctx, occ.New("files:cleanup"))
		return err
	})
	r.Step(`^the administrator empties the trashbin of user "([^"]*)" using the occ command$`, func(ctx context.Context, user string) error {
		_, err := s.run(ctx, occ.New("trashbin:cleanup").Arg(user))
		return err
	})
	r.Step(`^the administrator empties the trashbin of all users using the occ command$`, func(ctx context.Context) error {
		_, err := s.run(ctx, occ.New("trashbin:cleanup"))
		return err
	})
	r.Step(`^the administrator deletes all the versions for user "([^"]*)"$`, func(ctx context.Context, user string) error {
		_, err := s.run(ctx, occ.New("versions:cleanup").Arg(user))
		return err
	})
	r.Step(`^the administrator has cleared the versions for user "([^"]*)"$`, s.clearedVersionsForUser)
	r.Step(`^the administrator has cleared the versions for all users$`, s.clearedVersionsForAllUsers)
}

func (s *Steps) clearedVersionsForUser(ctx context.Context, user string) error {
	res, err := s.run(ctx, occ.New("versions:cleanup").Arg(user))
	if err != nil {
		return err
	}
	t := &fail.T{}
	assert.Equal(t, "Delete versions of   "+user, strings.TrimSpace(res.Stdout))
	return t.Err()
}

func (s *Steps) clearedVersionsForAllUsers(ctx context.Context) error {
	res, err := s.run(ctx, occ.New("versions:cleanup"))
	if err != nil {
		return err
	}
	t := &fail.T{}
	assert.Contains(t, strings.TrimSpace(res.Stdout), "Delete all versions")
	return t.Err()
}
