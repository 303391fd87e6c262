package suite

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/loykin/occaccept/internal/config"
	"github.com/loykin/occaccept/internal/store"
	"github.com/loykin/occaccept/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv     *testserver.Server
	cfg     *config.ConfigDoc
	journal *store.Journal
	suite   *Suite
}

func newFixture(t *testing.T, features string) *fixture {
	t.Helper()
	srv := testserver.New(testserver.Options{})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	cfg := &config.ConfigDoc{
		Server: config.ServerConfig{BaseURL: ts.URL, RemoteBaseURL: "https://remote.example.com"},
		Suite:  config.SuiteConfig{Paths: []string{filepath.Join("testdata", features)}, Format: "progress"},
	}
	cfg.Journal.Driver = store.DriverSqlite
	cfg.Journal.SQLite.Path = ":memory:"
	require.NoError(t, cfg.ApplyDefaults())

	client, err := cfg.OCSClient()
	require.NoError(t, err)
	j, err := store.Open(context.Background(), cfg.Journal.Config)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	s := New(cfg, Deps{Client: client, Runner: cfg.Runner(client), Journal: j})
	return &fixture{srv: srv, cfg: cfg, journal: j, suite: s}
}

func TestFeaturesAgainstFakeServer(t *testing.T) {
	f := newFixture(t, "features")
	opts := f.suite.Options()
	opts.TestingT = t
	opts.Output = io.Discard

	status := f.suite.TestSuite(opts).Run()
	require.Equal(t, 0, status)

	// teardown restored the server
	_, ok := f.srv.SystemConfig("dav.enable.tech_preview")
	assert.False(t, ok, "tech preview key should be removed")
	assert.Empty(t, f.srv.Certificates())

	runs, err := f.journal.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 5)
	for _, r := range runs {
		assert.Equal(t, store.StatusPassed, r.Status, r.Scenario)
		assert.NotEmpty(t, r.FinishedAt, r.Scenario)
	}

	var occRun store.Run
	for _, r := range runs {
		if r.Scenario == "set a system config value" {
			occRun = r
		}
	}
	require.NotEmpty(t, occRun.ID)
	assert.Contains(t, occRun.Feature, "occ.feature")
	cmds, err := f.journal.ListCommands(context.Background(), occRun.ID)
	require.NoError(t, err)
	require.NotEmpty(t, cmds)
	var lines []string
	for _, c := range cmds {
		lines = append(lines, c.Command)
	}
	assert.Contains(t, lines, "config:system:set --value /tmp/skel --type string skeletondirectory")
}

func TestFailedScenarioIsJournaled(t *testing.T) {
	f := newFixture(t, "failing")
	opts := f.suite.Options()
	opts.Output = io.Discard

	status := f.suite.TestSuite(opts).Run()
	assert.NotEqual(t, 0, status)

	runs, err := f.journal.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.StatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "exit code")
}

func TestNewStepsAreIndependent(t *testing.T) {
	f := newFixture(t, "features")
	a, b := f.suite.NewSteps(), f.suite.NewSteps()
	assert.NotEqual(t, a.Scenario().ID, b.Scenario().ID)
	a.Scenario().Env.Set("user", "brian")
	_, ok := b.Scenario().Env.Lookup("user")
	assert.False(t, ok)
	assert.Equal(t, "https://remote.example.com", b.Scenario().Env.Substitute("%remote_server%"))
}

func TestOpen(t *testing.T) {
	cfg := &config.ConfigDoc{Server: config.ServerConfig{BaseURL: "http://127.0.0.1:1"}}
	cfg.Journal.Driver = "oracle"
	require.NoError(t, cfg.ApplyDefaults())
	_, _, err := Open(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open journal")

	cfg.Journal.Disabled = true
	s, closer, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	closer()
	assert.Nil(t, s.deps.Journal)
}

func TestRunWaitsForServer(t *testing.T) {
	srv := testserver.New(testserver.Options{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	cfg := &config.ConfigDoc{
		Server: config.ServerConfig{BaseURL: ts.URL},
		Suite:  config.SuiteConfig{Paths: []string{filepath.Join("testdata", "features")}, Format: "progress"},
	}
	cfg.Wait.Enabled = true
	cfg.Wait.Timeout = "300ms"
	cfg.Wait.Interval = "50ms"
	cfg.Journal.Disabled = true
	require.NoError(t, cfg.ApplyDefaults())

	status, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, status)
	v, ok := srv.SystemConfig("skeletondirectory")
	require.True(t, ok)
	assert.Equal(t, "/tmp/skel", v)

	srv.SetMaintenance(true)
	status, err = Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, 1, status)
}
