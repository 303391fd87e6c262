package steps

import (
	"context"
	"net/http"

	"github.com/cucumber/godog"
	"github.com/loykin/occaccept/internal/ocs"
	"github.com/loykin/occaccept/internal/util"
	"github.com/loykin/occaccept/pkg/fail"
	"github.com/loykin/occaccept/pkg/pathres"
	"github.com/stretchr/testify/assert"
)

// RegisterAppConfiguration registers app config and capabilities steps.
func (s *Steps) RegisterAppConfiguration(r Registrar) {
	r.Step(`^the administrator sets parameter "([^"]*)" of app "([^"]*)" to "([^"]*)"$`, s.adminSetsAppParameter)
	r.Step(`^parameter "([^"]*)" of app "([^"]*)" has been set to ((?:'[^']*')|(?:"[^"]*"))$`, s.appParameterHasBeenSet)
	r.Step(`^the administrator has set the following app config values:$`, s.adminHasSetAppConfigValues)

	r.Step(`^the capabilities setting of "([^"]*)" path "([^"]*)" should be "([^"]*)"$`, s.capabilityShouldBe)
	r.Step(`^the capabilities setting of "([^"]*)" path "([^"]*)" has been confirmed to be "([^"]*)"$`, s.capabilityShouldBe)
	r.Step(`^the capabilities setting of "([^"]*)" path "([^"]*)" should exist$`, s.capabilityShouldExist)
	r.Step(`^the capabilities setting of "([^"]*)" path "([^"]*)" should not exist$`, s.capabilityShouldNotExist)

	r.Step(`^user "([^"]*)" retrieves the capabilities using the capabilities API$`, s.userRetrievesCapabilities)
	r.Step(`^user "([^"]*)" has retrieved the capabilities$`, s.userHasRetrievedCapabilities)
	r.Step(`^the user retrieves the capabilities using the capabilities API$`, func(ctx context.Context) error {
		return s.userRetrievesCapabilities(ctx, s.sc.CurrentUser())
	})
	r.Step(`^the user has retrieved the capabilities$`, func(ctx context.Context) error {
		return s.userHasRetrievedCapabilities(ctx, s.sc.CurrentUser())
	})
	r.Step(`^the administrator retrieves the capabilities using the capabilities API$`, func(ctx context.Context) error {
		return s.userRetrievesCapabilities(ctx, s.sc.Users.Admin)
	})
	r.Step(`^the administrator has retrieved the capabilities$`, func(ctx context.Context) error {
		return s.userHasRetrievedCapabilities(ctx, s.sc.Users.Admin)
	})

	r.Step(`^the administrator has (enabled|disabled) the testing app$`, func(ctx context.Context, action string) error {
		return s.setTestingAppStatus(ctx, action == "enabled")
	})
}

// adminSetsAppParameter acts as the administrator for one request and
// restores the current user afterwards.
func (s *Steps) adminSetsAppParameter(ctx context.Context, parameter, app, value string) error {
	user := s.sc.CurrentUser()
	s.sc.SetCurrentUser(s.sc.Users.Admin)
	defer s.sc.SetCurrentUser(user)

	resp, err := s.deps.Client.SetAppConfig(ctx, app, parameter, value)
	if err != nil {
		return err
	}
	s.sc.SetResponse(resp)
	return nil
}

func (s *Steps) appParameterHasBeenSet(ctx context.Context, parameter, app, quoted string) error {
	if err := s.adminSetsAppParameter(ctx, parameter, app, util.TrimQuotes(quoted)); err != nil {
		return err
	}
	return s.expectStatus(http.StatusOK)
}

func (s *Steps) adminHasSetAppConfigValues(ctx context.Context, table *godog.Table) error {
	rows, err := columnsHash(table, "app", "parameter", "value")
	if err != nil {
		return err
	}
	values := make([]ocs.AppConfigValue, 0, len(rows))
	for _, row := range rows {
		values = append(values, ocs.AppConfigValue{App: row["app"], Parameter: row["parameter"], Value: row["value"]})
	}
	resp, err := s.deps.Client.SetAppConfigs(ctx, values)
	if err != nil {
		return err
	}
	s.sc.SetResponse(resp)
	return s.expectStatus(http.StatusOK)
}

func (s *Steps) userRetrievesCapabilities(ctx context.Context, user string) error {
	resp, err := s.deps.Client.Capabilities(ctx, s.sc.Users.Credentials(user))
	if err != nil {
		return err
	}
	s.sc.SetResponse(resp)
	return nil
}

func (s *Steps) userHasRetrievedCapabilities(ctx context.Context, user string) error {
	if err := s.userRetrievesCapabilities(ctx, user); err != nil {
		return err
	}
	return s.expectStatus(http.StatusOK)
}

// expectStatus checks the HTTP status of the last response.
func (s *Steps) expectStatus(status int) error {
	resp, err := s.sc.Response()
	if err != nil {
		return err
	}
	t := &fail.T{}
	assert.Equal(t, status, resp.StatusCode, "unexpected HTTP status")
	return t.Err()
}

// capabilities fetches the capabilities as the administrator and returns
// the data/capabilities node of the response.
func (s *Steps) capabilities(ctx context.Context) (*pathres.Node, error) {
	if err := s.userHasRetrievedCapabilities(ctx, s.sc.Users.Admin); err != nil {
		return nil, err
	}
	resp, err := s.sc.Response()
	if err != nil {
		return nil, err
	}
	data, err := resp.Data()
	if err != nil {
		return nil, fail.WrapStructural(err, "capabilities response")
	}
	caps, ok := data.Child("capabilities")
	if !ok {
		return nil, fail.Structuralf("capabilities response has no capabilities element")
	}
	return caps, nil
}

func (s *Steps) capabilityShouldBe(ctx context.Context, app, path, expected string) error {
	caps, err := s.capabilities(ctx)
	if err != nil {
		return err
	}
	got, err := s.deps.Resolver.Lookup(caps, app, path)
	if err != nil {
		return err
	}
	t := &fail.T{}
	assert.Equal(t, expected, got, "capability %s %s", app, path)
	return t.Err()
}

func (s *Steps) capabilityShouldExist(ctx context.Context, app, path string) error {
	caps, err := s.capabilities(ctx)
	if err != nil {
		return err
	}
	if !s.deps.Resolver.Exists(caps, app, path) {
		return fail.Assertf("capability %s %s does not exist but should", app, path)
	}
	return nil
}

func (s *Steps) capabilityShouldNotExist(ctx context.Context, app, path string) error {
	caps, err := s.capabilities(ctx)
	if err != nil {
		return err
	}
	if s.deps.Resolver.Exists(caps, app, path) {
		return fail.Assertf("capability %s %s exists but should not", app, path)
	}
	return nil
}

// setTestingAppStatus toggles the testing app and checks the enabled app
// list reflects the change.
func (s *Steps) setTestingAppStatus(ctx context.Context, enabled bool) error {
	resp, err := s.deps.Client.SetAppEnabled(ctx, "testing", enabled)
	if err != nil {
		return err
	}
	s.sc.SetResponse(resp)
	if err := s.expectStatus(http.StatusOK); err != nil {
		return err
	}
	if s.deps.Client.APIVersion == 1 {
		code, err := resp.OCSStatusCode()
		if err != nil {
			return fail.WrapStructural(err, "enable testing app")
		}
		if code != 100 {
			return fail.Mismatch("unexpected OCS status code", 100, code)
		}
	}
	apps, err := s.deps.Client.EnabledApps(ctx)
	if err != nil {
		return err
	}
	t := &fail.T{}
	if enabled {
		assert.Contains(t, apps, "testing")
	} else {
		assert.NotContains(t, apps, "testing")
	}
	return t.Err()
}
