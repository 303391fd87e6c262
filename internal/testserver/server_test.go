package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/loykin/occaccept/internal/auth"
	"github.com/loykin/occaccept/internal/ocs"
	"github.com/loykin/occaccept/pkg/occ"
	"github.com/loykin/occaccept/pkg/pathres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFake(t *testing.T, opts Options) (*Server, *ocs.Client) {
	t.Helper()
	srv := New(opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ocs.New(ts.URL, 2, auth.BasicConfig{Username: "admin", Password: "admin"}, nil)
}

func runOcc(t *testing.T, c *ocs.Client, line string) occ.Result {
	t.Helper()
	cmd, err := occ.ParseCommand(line)
	require.NoError(t, err)
	res, err := occ.NewRemoteRunner(c).Run(context.Background(), cmd, nil)
	require.NoError(t, err)
	return res
}

func TestAuthentication(t *testing.T) {
	_, c := newFake(t, Options{Users: map[string]string{"brian": "secret"}})
	ctx := context.Background()

	resp, err := c.Capabilities(ctx, &ocs.Credentials{Username: "brian", Password: "wrong"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = c.Capabilities(ctx, &ocs.Credentials{Username: "brian", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.Do(ctx, ocs.Request{Method: http.MethodGet, Path: "/apps/testing/api/v1/trustedservers", As: &ocs.Credentials{Username: "brian", Password: "secret"}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCapabilitiesFollowAppConfig(t *testing.T) {
	_, c := newFake(t, Options{})
	ctx := context.Background()

	caps := func() *pathres.Node {
		resp, err := c.Capabilities(ctx, nil)
		require.NoError(t, err)
		data, err := resp.Data()
		require.NoError(t, err)
		node, ok := data.Child("capabilities")
		require.True(t, ok)
		return node
	}

	v, err := pathres.Lookup(caps(), "files_sharing", "api_enabled")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	v, err = pathres.Lookup(caps(), "files", "blacklisted_files@@@element")
	require.NoError(t, err)
	assert.Equal(t, ".htaccess", v)

	resp, err := c.SetAppConfig(ctx, "core", "shareapi_enabled", "no")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	v, err = pathres.Lookup(caps(), "files_sharing", "api_enabled")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestTrustedServers(t *testing.T) {
	srv, c := newFake(t, Options{})
	ctx := context.Background()

	resp, err := c.AddTrustedServer(ctx, "https://remote.example")
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, err = c.AddTrustedServer(ctx, "https://remote.example")
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	list, err := c.TrustedServers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "https://remote.example", list[0].URL)
	assert.Equal(t, "1", list[0].ID)

	resp, err = c.DeleteTrustedServer(ctx, "https://remote.example")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, err = c.DeleteTrustedServer(ctx, "https://remote.example")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, _ = c.AddTrustedServer(ctx, "https://a")
	resp, err = c.DeleteAllTrustedServers(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, srv.TrustedURLs())
}

func TestTestingAppHelpers(t *testing.T) {
	srv, c := newFake(t, Options{ServerRoot: "/srv/oc"})
	ctx := context.Background()

	root, err := c.ServerRoot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/srv/oc", root)

	_, err = c.MkDir(ctx, "local_storage")
	require.NoError(t, err)
	assert.Equal(t, []string{"/local_storage"}, srv.Dirs())

	resp, err := c.SetAppConfigs(ctx, []ocs.AppConfigValue{
		{App: "core", Parameter: "shareapi_allow_links", Value: "no"},
		{App: "files_sharing", Parameter: "outgoing_server2server_share_enabled", Value: "no"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	v, _ := srv.AppConfig("core", "shareapi_allow_links")
	assert.Equal(t, "no", v)
	v, _ = srv.AppConfig("files_sharing", "outgoing_server2server_share_enabled")
	assert.Equal(t, "no", v)

	_, err = c.SetAppEnabled(ctx, "comments", true)
	require.NoError(t, err)
	assert.True(t, srv.AppEnabled("comments"))
	apps, err := c.EnabledApps(ctx)
	require.NoError(t, err)
	assert.Contains(t, apps, "comments")

	_, err = c.SetAppEnabled(ctx, "comments", false)
	require.NoError(t, err)
	assert.False(t, srv.AppEnabled("comments"))
	apps, err = c.EnabledApps(ctx)
	require.NoError(t, err)
	assert.NotContains(t, apps, "comments")
	assert.Contains(t, apps, "testing")
}

func TestOCSv1AlwaysAnswers200(t *testing.T) {
	srv := New(Options{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	c := ocs.New(ts.URL, 1, auth.BasicConfig{Username: "admin", Password: "admin"}, nil)

	resp, err := c.AddTrustedServer(context.Background(), "https://x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	code, err := resp.OCSStatusCode()
	require.NoError(t, err)
	assert.Equal(t, 100, code)
}

func TestOccSystemConfig(t *testing.T) {
	srv, c := newFake(t, Options{})

	res := runOcc(t, c, "config:system:set --value true --type boolean dav.enable.tech_preview")
	assert.Equal(t, 0, res.ExitCode)
	v, ok := srv.SystemConfig("dav.enable.tech_preview")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	res = runOcc(t, c, "config:system:get dav.enable.tech_preview")
	assert.Equal(t, "true\n", res.Stdout)

	res = runOcc(t, c, "config:system:set --value maybe --type boolean x")
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, []string{"Unable to parse value as boolean"}, res.Exceptions())

	runOcc(t, c, "config:system:delete dav.enable.tech_preview")
	res = runOcc(t, c, "config:system:get dav.enable.tech_preview")
	assert.Equal(t, 1, res.ExitCode)
	assert.Empty(t, res.Stdout)

	runOcc(t, c, `config:system:set --value '{"a":[1,2]}' --type json structured`)
	res = runOcc(t, c, "config:list")
	assert.Contains(t, res.Stdout, `"structured": {`)
	assert.Contains(t, res.Stdout, "***REMOVED SENSITIVE VALUE***")
	assert.NotContains(t, res.Stdout, "database-secret")
}

func TestOccAppConfigAndBackground(t *testing.T) {
	_, c := newFake(t, Options{})

	res := runOcc(t, c, "config:app:set --value yes core enable_external_storage")
	assert.Equal(t, 0, res.ExitCode)
	res = runOcc(t, c, "config:app:get core enable_external_storage")
	assert.Equal(t, "yes", strings.TrimSpace(res.Stdout))

	runOcc(t, c, "background:cron")
	res = runOcc(t, c, "config:app:get core backgroundjobs_mode")
	assert.Equal(t, "cron", strings.TrimSpace(res.Stdout))

	res = runOcc(t, c, "background:queue:status")
	lines := occ.FindLines(res.Stdout, "ExpireTrash")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "| 2 "))

	res = runOcc(t, c, "background:queue:delete 2")
	assert.Equal(t, 0, res.ExitCode)
	res = runOcc(t, c, "background:queue:status")
	assert.Empty(t, occ.FindLines(res.Stdout, "ExpireTrash"))
}

func TestOccExternalStorage(t *testing.T) {
	_, c := newFake(t, Options{Users: map[string]string{"alice": "a"}, Groups: map[string][]string{"grp1": {"alice"}}})

	res := runOcc(t, c, "files_external:create /local_storage local null::null -c datadir=/srv/local_storage")
	assert.Equal(t, "Storage created with id 1\n", res.Stdout)

	runOcc(t, c, "files_external:option 1 read_only 1")
	runOcc(t, c, "files_external:applicable 1 --add-user alice")
	runOcc(t, c, "files_external:applicable 1 --add-group grp1")
	res = runOcc(t, c, "files_external:applicable 1 --add-user nobody")
	assert.Equal(t, []string{"User nobody not found"}, res.Exceptions())

	res = runOcc(t, c, "files_external:list --output=json")
	assert.Contains(t, res.Stdout, `"mount_point":"/local_storage"`)
	assert.Contains(t, res.Stdout, `"configuration":"datadir: \"/srv/local_storage\""`)
	assert.Contains(t, res.Stdout, `"options":"read_only: 1"`)
	assert.Contains(t, res.Stdout, `"applicable_users":"alice"`)
	assert.Contains(t, res.Stdout, `"applicable_groups":"grp1"`)

	res = runOcc(t, c, "files_external:delete --yes 1")
	assert.Equal(t, 0, res.ExitCode)
	res = runOcc(t, c, "files_external:list --output=json")
	assert.Equal(t, "[]", strings.TrimSpace(res.Stdout))

	res = runOcc(t, c, "files_external:delete --yes 9")
	assert.Equal(t, []string{"Mount with id 9 not found"}, res.Exceptions())
}

func TestOccMisc(t *testing.T) {
	srv, c := newFake(t, Options{Users: map[string]string{"brian": "b"}, UpgradeExitCode: 3})

	res := runOcc(t, c, "versions:cleanup brian")
	assert.Equal(t, "Delete versions of   brian", strings.TrimSpace(res.Stdout))
	res = runOcc(t, c, "versions:cleanup")
	assert.Contains(t, res.Stdout, "Delete all versions")

	res = runOcc(t, c, "files:scan --group=nogroup")
	assert.Equal(t, []string{"Group name nogroup doesn't exist"}, res.Exceptions())
	res = runOcc(t, c, "files:scan --all")
	assert.Contains(t, res.Stdout, "(brian)")

	res = runOcc(t, c, "security:certificates:import /tmp/goodCertificate.crt")
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{"goodCertificate.crt"}, srv.Certificates())
	res = runOcc(t, c, "security:certificates:import /tmp/invalidCertificate.crt")
	assert.Equal(t, []string{"Certificate could not get parsed."}, res.Exceptions())
	runOcc(t, c, "security:certificates:remove goodCertificate.crt")
	assert.Empty(t, srv.Certificates())

	res = runOcc(t, c, "log:manage --level info")
	assert.Contains(t, res.Stdout, "Log level: Info (1)")
	v, _ := srv.SystemConfig("loglevel")
	assert.Equal(t, "1", v)
	runOcc(t, c, "log:owncloud --rotate-size 10MB")
	v, _ = srv.SystemConfig("log_rotate_size")
	assert.Equal(t, "10485760", v)

	res = runOcc(t, c, "upgrade")
	assert.Equal(t, 3, res.ExitCode)
	assert.True(t, srv.Maintenance())
	runOcc(t, c, "maintenance:mode --off")
	assert.False(t, srv.Maintenance())

	res = runOcc(t, c, "no:such:command")
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, []string{`Command "no:such:command" is not defined.`}, res.Exceptions())

	assert.Contains(t, srv.Commands(), "upgrade")
}

func TestOccEnvVariables(t *testing.T) {
	srv, c := newFake(t, Options{})
	cmd := occ.New("status")
	_, err := occ.NewRemoteRunner(c).Run(context.Background(), cmd, map[string]string{"OC_PASS": "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"OC_PASS": "x"}, srv.LastEnv())
}

func TestParseArgs(t *testing.T) {
	a := parseArgs([]string{"core", "--value=yes", "--type", "string", "--all", "-c", "datadir=/x", "key"})
	assert.Equal(t, []string{"core", "key"}, a.pos)
	assert.Equal(t, "yes", a.flag("value"))
	assert.Equal(t, "string", a.flag("type"))
	assert.True(t, a.has("all"))
	assert.Equal(t, "datadir=/x", a.flag("c"))
}
