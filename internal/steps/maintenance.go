package steps

import (
	"context"
	"path"
	"strings"

	"github.com/loykin/occaccept/internal/constants"
	"github.com/loykin/occaccept/pkg/fail"
	"github.com/loykin/occaccept/pkg/occ"
	"github.com/loykin/occaccept/pkg/verify"
	"github.com/stretchr/testify/assert"
)

// RegisterMaintenance registers logging, certificate, maintenance and DAV
// tech preview steps.
func (s *Steps) RegisterMaintenance(r Registrar) {
	r.Step(`^the administrator sets the log level to "([^"]*)" using the occ command$`, func(ctx context.Context, level string) error {
		_, err := s.run(ctx, occ.New("log:manage").Flag("level", level))
		return err
	})
	r.Step(`^the administrator sets the timezone to "([^"]*)" using the occ command$`, func(ctx context.Context, tz string) error {
		_, err := s.run(ctx, occ.New("log:manage").Flag("timezone", tz))
		return err
	})
	r.Step(`^the administrator sets the backend to "([^"]*)" using the occ command$`, func(ctx context.Context, backend string) error {
		_, err := s.run(ctx, occ.New("log:manage").Flag("backend", backend))
		return err
	})
	r.Step(`^the administrator enables the ownCloud backend using the occ command$`, func(ctx context.Context) error {
		_, err := s.run(ctx, occ.New("log:owncloud").Switch("enable"))
		return err
	})
	r.Step(`^the administrator sets the log file path to "([^"]*)" using the occ command$`, func(ctx context.Context, file string) error {
		_, err := s.run(ctx, occ.New("log:owncloud").Flag("file", file))
		return err
	})
	r.Step(`^the administrator sets the log rotate file size to "([^"]*)" using the occ command$`, func(ctx context.Context, size string) error {
		_, err := s.run(ctx, occ.New("log:owncloud").Flag("rotate-size", size))
		return err
	})
	r.Step(`^the log level should be "([^"]*)"$`, func(ctx context.Context, level string) error {
		return s.systemValueShouldBe(ctx, "loglevel", level)
	})
	r.Step(`^the update channel should be "([^"]*)"$`, func(ctx context.Context, channel string) error {
		return s.appValueShouldBe(ctx, "core", "OC_Channel", channel)
	})

	r.Step(`^the administrator imports security certificate from the path "([^"]*)"$`, func(ctx context.Context, p string) error {
		_, err := s.importCertificate(ctx, p)
		return err
	})
	r.Step(`^the administrator has imported security certificate from the path "([^"]*)"$`, func(ctx context.Context, p string) error {
		res, err := s.importCertificate(ctx, p)
		if err != nil {
			return err
		}
		return verify.Success(res)
	})
	r.Step(`^the administrator removes the security certificate "([^"]*)"$`, s.removeCertificate)

	r.Step(`^the administrator list the repair steps using the occ command$`, func(ctx context.Context) error {
		_, err := s.run(ctx, occ.New("maintenance:repair").Switch("list"))
		return err
	})
	r.Step(`^the administrator runs upgrade routines on local server using the occ command$`, s.runUpgrade)

	r.Step(`^the administrator enables DAV tech_preview$`, func(ctx context.Context) error {
		_, err := s.EnableTechPreview(ctx)
		return err
	})
	r.Step(`^the administrator has enabled DAV tech_preview$`, func(ctx context.Context) error {
		ran, err := s.EnableTechPreview(ctx)
		if err != nil || !ran {
			return err
		}
		return s.commandShouldHaveSucceeded()
	})
	r.Step(`^the administrator disables DAV tech_preview$`, s.DisableTechPreview)
	r.Step(`^the administrator has disabled DAV tech_preview$`, func(ctx context.Context) error {
		if err := s.DisableTechPreview(ctx); err != nil {
			return err
		}
		return s.commandShouldHaveSucceeded()
	})
}

// systemValueShouldBe runs config:system:get as the step's action and
// compares its trimmed stdout.
func (s *Steps) systemValueShouldBe(ctx context.Context, key, expected string) error {
	res, err := s.run(ctx, occ.New("config:system:get").Arg(key))
	if err != nil {
		return err
	}
	t := &fail.T{}
	assert.Equal(t, expected, strings.TrimSpace(res.Stdout), "system config %s", key)
	return t.Err()
}

// importCertificate records the certificate file name whether or not the
// import succeeds; teardown removes it.
func (s *Steps) importCertificate(ctx context.Context, p string) (occ.Result, error) {
	res, err := s.run(ctx, occ.New("security:certificates:import").Arg(p))
	if err != nil {
		return res, err
	}
	s.sc.CertificateImported(path.Base(p))
	return res, nil
}

func (s *Steps) removeCertificate(ctx context.Context, name string) error {
	if _, err := s.run(ctx, occ.New("security:certificates:remove").Arg(name)); err != nil {
		return err
	}
	s.sc.CertificateRemoved(name)
	return nil
}

// runUpgrade runs the upgrade routine and leaves maintenance mode when it
// fails. The scenario's last command result is left untouched.
func (s *Steps) runUpgrade(ctx context.Context) error {
	res, err := s.query(ctx, occ.New("upgrade"))
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		s.log.Warn("upgrade failed, turning maintenance mode off", "exit_code", res.ExitCode)
		if _, err := s.query(ctx, occ.New("maintenance:mode").Switch("off")); err != nil {
			return err
		}
	}
	return nil
}

// EnableTechPreview turns the DAV tech preview on unless the scenario
// already did. It reports whether a command was run.
func (s *Steps) EnableTechPreview(ctx context.Context) (bool, error) {
	if s.sc.TechPreviewEnabled() {
		return false, nil
	}
	if _, err := s.run(ctx, systemConfigSet(constants.TechPreviewKey, "true", "boolean")); err != nil {
		return false, err
	}
	s.sc.SetTechPreviewEnabled(true)
	return true, nil
}

// DisableTechPreview removes the DAV tech preview key.
func (s *Steps) DisableTechPreview(ctx context.Context) error {
	if _, err := s.run(ctx, occ.New("config:system:delete").Arg(constants.TechPreviewKey)); err != nil {
		return err
	}
	s.sc.SetTechPreviewEnabled(false)
	return nil
}
