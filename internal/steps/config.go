package steps

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/loykin/occaccept/internal/util"
	"github.com/loykin/occaccept/pkg/fail"
	"github.com/loykin/occaccept/pkg/occ"
	"github.com/loykin/occaccept/pkg/verify"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// RegisterConfig registers system and app config steps.
func (s *Steps) RegisterConfig(r Registrar) {
	r.Step(`^the administrator (?:adds|updates) system config key "([^"]*)" with value "([^"]*)" using the occ command$`, func(ctx context.Context, key, value string) error {
		_, err := s.run(ctx, systemConfigSet(key, value, "string"))
		return err
	})
	r.Step(`^the administrator (?:adds|updates) system config key "([^"]*)" with value "([^"]*)" and type "([^"]*)" using the occ command$`, func(ctx context.Context, key, value, typ string) error {
		_, err := s.run(ctx, systemConfigSet(key, value, typ))
		return err
	})
	r.Step(`^the administrator has (?:added|updated) system config key "([^"]*)" with value "([^"]*)"$`, func(ctx context.Context, key, value string) error {
		_, err := s.runSuccess(ctx, systemConfigSet(key, value, "string"))
		return err
	})
	r.Step(`^the administrator has (?:added|updated) system config key "([^"]*)" with value "([^"]*)" and type "([^"]*)"$`, func(ctx context.Context, key, value, typ string) error {
		_, err := s.runSuccess(ctx, systemConfigSet(key, value, typ))
		return err
	})
	r.Step(`^the administrator deletes system config key "([^"]*)" using the occ command$`, func(ctx context.Context, key string) error {
		_, err := s.run(ctx, occ.New("config:system:delete").Arg(key))
		return err
	})
	r.Step(`^the administrator has set the default folder for received shares to "([^"]*)"$`, func(ctx context.Context, folder string) error {
		_, err := s.runSuccess(ctx, systemConfigSet("share_folder", folder, "string"))
		return err
	})
	r.Step(`^the administrator has set the mail smtpmode to "([^"]*)"$`, func(ctx context.Context, mode string) error {
		_, err := s.runSuccess(ctx, systemConfigSet("mail_smtpmode", mode, "string"))
		return err
	})
	r.Step(`^system config key "([^"]*)" should have value "([^"]*)"$`, s.systemConfigShouldHaveValue)
	r.Step(`^system config key "([^"]*)" should not exist$`, s.systemConfigShouldNotExist)

	r.Step(`^the administrator (?:adds|updates) config key "([^"]*)" with value "([^"]*)" in app "([^"]*)" using the occ command$`, func(ctx context.Context, key, value, app string) error {
		_, err := s.run(ctx, appConfigSet(app, key, value))
		return err
	})
	r.Step(`^the administrator has added config key "([^"]*)" with value "([^"]*)" in app "([^"]*)"$`, func(ctx context.Context, key, value, app string) error {
		_, err := s.runSuccess(ctx, appConfigSet(app, key, value))
		return err
	})
	r.Step(`^the administrator deletes config key "([^"]*)" of app "([^"]*)" using the occ command$`, func(ctx context.Context, key, app string) error {
		_, err := s.run(ctx, occ.New("config:app:delete").Arg(app, key))
		return err
	})

	r.Step(`^the administrator lists the config keys$`, func(ctx context.Context) error {
		_, err := s.run(ctx, occ.New("config:list"))
		return err
	})
	r.Step(`^the command output should contain the apps configs$`, func() error {
		return s.configListShouldContain("apps")
	})
	r.Step(`^the command output should contain the system configs$`, func() error {
		return s.configListShouldContain("system")
	})
	r.Step(`^the system config key "([^"]*)" from the last command output should match value "([^"]*)" of type "([^"]*)"$`, s.systemConfigFromOutputShouldMatch)

	r.Step(`^the administrator has enabled the external storage$`, s.enableExternalStorage)
	r.Step(`^the administrator has added group "([^"]*)" to the exclude group from sharing list$`, s.excludeGroupsFromSharing)
	r.Step(`^the administrator has enabled exclude groups from sharing$`, s.enableExcludeGroupsFromSharing)
}

func systemConfigSet(key, value, typ string) *occ.Command {
	return occ.New("config:system:set").Flag("value", value).Flag("type", typ).Arg(key)
}

func appConfigSet(app, key, value string) *occ.Command {
	return occ.New("config:app:set").Flag("value", value).Arg(app, key)
}

// query runs cmd without replacing the scenario's last result. It backs
// lookups that are part of an assertion rather than the action under test.
func (s *Steps) query(ctx context.Context, cmd *occ.Command) (occ.Result, error) {
	logger := s.log.WithCommand(cmd.String())
	res, err := s.deps.Runner.Run(ctx, cmd, nil)
	if err != nil {
		logger.Error("occ query could not be run", "error", err)
		return occ.Result{}, fmt.Errorf("run occ %s: %w", cmd.Verb, err)
	}
	logger.Debug("occ query finished", "exit_code", res.ExitCode)
	return res, nil
}

// SystemConfigValue returns the trimmed value of a system config key, ""
// when it is not set.
func (s *Steps) SystemConfigValue(ctx context.Context, key string) (string, error) {
	res, err := s.query(ctx, occ.New("config:system:get").Arg(key))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (s *Steps) appConfigValue(ctx context.Context, app, key string) (string, error) {
	res, err := s.query(ctx, occ.New("config:app:get").Arg(app, key))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

func (s *Steps) systemConfigShouldHaveValue(ctx context.Context, key, value string) error {
	got, err := s.SystemConfigValue(ctx, key)
	if err != nil {
		return err
	}
	t := &fail.T{}
	assert.Equal(t, value, got, "system config key %s", key)
	return t.Err()
}

func (s *Steps) systemConfigShouldNotExist(ctx context.Context, key string) error {
	res, err := s.query(ctx, occ.New("config:system:get").Arg(key))
	if err != nil {
		return err
	}
	if res.Stdout != "" {
		return fail.Mismatch(fmt.Sprintf("system config key %s exists", key), "", res.Stdout)
	}
	return nil
}

func (s *Steps) configListShouldContain(section string) error {
	res, err := s.lastResult()
	if err != nil {
		return err
	}
	v := gjson.Get(res.Stdout, section)
	if !v.Exists() || len(v.Map()) == 0 {
		return fail.Assertf("The occ output does not contain %s configs", strings.TrimSuffix(section, "s"))
	}
	return nil
}

// systemEntry finds key in the "system" object of config:list output.
// Keys are matched literally; dotted keys are not treated as paths.
func systemEntry(stdout, key string) (gjson.Result, bool) {
	var found gjson.Result
	ok := false
	gjson.Get(stdout, "system").ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found, ok = v, true
			return false
		}
		return true
	})
	return found, ok
}

// delimitedRegex converts a /pattern/flags expression into Go syntax.
// Anything else is used as the pattern itself.
var delimitedRegex = regexp.MustCompile(`^/(.*)/([a-z]*)$`)

func compileExpected(expr string) (*regexp.Regexp, error) {
	if m := delimitedRegex.FindStringSubmatch(expr); m != nil {
		pattern := m[1]
		if flags := strings.Map(func(r rune) rune {
			if strings.ContainsRune("imsU", r) {
				return r
			}
			return -1
		}, m[2]); flags != "" {
			pattern = "(?" + flags + ")" + pattern
		}
		return regexp.Compile(pattern)
	}
	return regexp.Compile(expr)
}

func (s *Steps) systemConfigFromOutputShouldMatch(key, value, typ string) error {
	res, err := s.lastResult()
	if err != nil {
		return err
	}
	actual, ok := systemEntry(res.Stdout, key)
	if typ == "json" {
		re, err := compileExpected(value)
		if err != nil {
			return fail.WrapStructural(err, "invalid expected pattern")
		}
		encoded := "null"
		if ok {
			encoded = strings.ReplaceAll(string(pretty.Ugly([]byte(actual.Raw))), `\/`, "/")
		}
		if !re.MatchString(encoded) {
			return fail.Mismatch(fmt.Sprintf("config: %s does not match %s", key, value), value, encoded)
		}
		return nil
	}
	if !ok {
		return fail.Assertf("system config doesn't contain key: %s", key)
	}
	msg := fmt.Sprintf("config: %s doesn't contain value: %s", key, value)
	t := &fail.T{}
	switch typ {
	case "boolean":
		assert.Equal(t, value == "true", actual.Bool(), msg)
	case "integer":
		want, err := strconv.Atoi(value)
		if err != nil {
			return fail.WrapStructural(err, "invalid integer "+value)
		}
		assert.Equal(t, int64(want), actual.Int(), msg)
	default:
		assert.Equal(t, value, actual.String(), msg)
	}
	return t.Err()
}

// setAndConfirmAppValue sets an app config key and reads it back.
func (s *Steps) setAndConfirmAppValue(ctx context.Context, app, key, value string) (string, error) {
	res, err := s.query(ctx, occ.New("config:app:set").FlagEq("value", value).Arg(app, key))
	if err != nil {
		return "", err
	}
	if err := verify.Success(res); err != nil {
		return "", err
	}
	return s.appConfigValue(ctx, app, key)
}

func (s *Steps) enableExternalStorage(ctx context.Context) error {
	got, err := s.setAndConfirmAppValue(ctx, "core", "enable_external_storage", "yes")
	if err != nil {
		return err
	}
	t := &fail.T{}
	assert.Equal(t, "yes", got, "external storage")
	return t.Err()
}

func (s *Steps) excludeGroupsFromSharing(ctx context.Context, groups string) error {
	quoted := `"` + strings.Join(util.SplitList(groups), `","`) + `"`
	got, err := s.setAndConfirmAppValue(ctx, "core", "shareapi_exclude_groups_list", "["+quoted+"]")
	if err != nil {
		return err
	}
	t := &fail.T{}
	assert.Equal(t, quoted, strings.Trim(got, "[]"), "excluded groups")
	return t.Err()
}

func (s *Steps) enableExcludeGroupsFromSharing(ctx context.Context) error {
	got, err := s.setAndConfirmAppValue(ctx, "core", "shareapi_exclude_groups", "yes")
	if err != nil {
		return err
	}
	t := &fail.T{}
	assert.Equal(t, "yes", got, "exclude groups from sharing")
	return t.Err()
}
