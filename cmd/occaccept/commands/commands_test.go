package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loykin/occaccept/internal/common"
	"github.com/loykin/occaccept/internal/steps"
	"github.com/loykin/occaccept/internal/testserver"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingFeature = `Feature: system config

  Scenario: set the skeleton directory
    When the administrator adds system config key "skeletondirectory" with value "/tmp/skel" using the occ command
    Then the command should have been successful
`

const failingFeature = `Feature: wrong expectations

  Scenario: wrong exit code
    When the administrator invokes occ command "config:system:get version"
    Then the command should have failed with exit code 1
`

type cliFixture struct {
	srv *testserver.Server
	dir string
	v   *viper.Viper
}

func newCLIFixture(t *testing.T, feature string) *cliFixture {
	t.Helper()
	prev := common.GetLogger()
	t.Cleanup(func() { common.SetDefaultLogger(prev) })

	srv := testserver.New(testserver.Options{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "features"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "features", "cli.feature"), []byte(feature), 0o600))
	cfg := fmt.Sprintf(`
server:
  base_url: %s
wait:
  enabled: true
  timeout: 2s
  interval: 20ms
suite:
  format: progress
logging:
  level: error
`, ts.URL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0o600))

	v := viper.New()
	v.Set("config", filepath.Join(dir, "config.yaml"))
	return &cliFixture{srv: srv, dir: dir, v: v}
}

func TestLoadConfig_Overrides(t *testing.T) {
	f := newCLIFixture(t, passingFeature)
	f.v.Set("tags", "@smoke")
	f.v.Set("format", "junit")
	f.v.Set("stop_on_failure", true)
	f.v.Set("no_journal", true)
	f.v.Set("base_url", "http://override.example.com/")

	cfg, err := loadConfig(f.v)
	require.NoError(t, err)
	assert.Equal(t, "@smoke", cfg.Suite.Tags)
	assert.Equal(t, "junit", cfg.Suite.Format)
	assert.True(t, cfg.Suite.StopOnFailure)
	assert.True(t, cfg.Journal.Disabled)
	assert.Equal(t, "http://override.example.com", cfg.Server.BaseURL)
	assert.Equal(t, []string{filepath.Join(f.dir, "features")}, cfg.Suite.Paths)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := loadConfig(viper.New())
	require.Error(t, err)

	v := viper.New()
	v.Set("config", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err = loadConfig(v)
	assert.Error(t, err)
}

func TestRunFeatures_PassesAndJournals(t *testing.T) {
	f := newCLIFixture(t, passingFeature)
	require.NoError(t, runFeatures(context.Background(), f.v, nil))
	v, ok := f.srv.SystemConfig("skeletondirectory")
	require.True(t, ok)
	assert.Equal(t, "/tmp/skel", v)

	var out bytes.Buffer
	require.NoError(t, printHistory(context.Background(), f.v, &out, historyOptions{limit: 10, commands: true}))
	text := out.String()
	assert.Contains(t, text, "passed")
	assert.Contains(t, text, "cli.feature: set the skeleton directory")
	assert.Contains(t, text, "occ config:system:set")

	out.Reset()
	require.NoError(t, printHistory(context.Background(), f.v, &out, historyOptions{json: true}))
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out.String()), "["))
	assert.Contains(t, out.String(), `"Scenario": "set the skeleton directory"`)
}

func TestRunFeatures_FailureIsExitError(t *testing.T) {
	f := newCLIFixture(t, failingFeature)
	f.v.Set("no_journal", true)
	err := runFeatures(context.Background(), f.v, nil)
	var ee *ExitError
	require.True(t, errors.As(err, &ee), "got %v", err)
	assert.NotZero(t, ee.Code)

	var out bytes.Buffer
	require.NoError(t, printHistory(context.Background(), f.v, &out, historyOptions{}))
	assert.Contains(t, out.String(), "Journal is disabled")
}

func TestRunFeatures_ExplicitPaths(t *testing.T) {
	f := newCLIFixture(t, failingFeature)
	f.v.Set("no_journal", true)
	other := filepath.Join(t.TempDir(), "ok.feature")
	require.NoError(t, os.WriteFile(other, []byte(passingFeature), 0o600))
	assert.NoError(t, runFeatures(context.Background(), f.v, []string{other}))
}

func TestWaitForServer(t *testing.T) {
	f := newCLIFixture(t, passingFeature)
	require.NoError(t, waitForServer(context.Background(), f.v))

	f.v.Set("base_url", "http://127.0.0.1:1")
	f.v.Set("wait_timeout", "50ms")
	err := waitForServer(context.Background(), f.v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout waiting for")
}

func TestStepPatterns(t *testing.T) {
	patterns := steps.Patterns()
	require.NotEmpty(t, patterns)
	for _, p := range patterns {
		assert.True(t, strings.HasPrefix(p, "^"), p)
	}

	var out bytes.Buffer
	require.NoError(t, printSteps(&out, "TRUSTED"))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.NotEmpty(t, lines)
	for _, l := range lines {
		assert.Contains(t, strings.ToLower(l), "trusted")
	}
}
