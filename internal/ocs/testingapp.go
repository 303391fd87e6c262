package ocs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/loykin/occaccept/internal/constants"
	"github.com/tidwall/gjson"
)

// TrustedServer is one entry of the federation trusted server list.
type TrustedServer struct {
	URL string
	ID  string
}

// AppConfigValue is one app config entry for SetAppConfigs.
type AppConfigValue struct {
	App       string
	Parameter string
	Value     string
}

func testingPath(format string, args ...interface{}) string {
	return constants.TestingAppPath + fmt.Sprintf(format, args...)
}

// Capabilities fetches /cloud/capabilities as the given user.
func (c *Client) Capabilities(ctx context.Context, as *Credentials) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: "/cloud/capabilities", As: as})
}

// TrustedServers lists the trusted servers known to the server.
func (c *Client) TrustedServers(ctx context.Context) ([]TrustedServer, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: testingPath("/trustedservers"), JSON: true})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocs: list trusted servers: unexpected status %d", resp.StatusCode)
	}
	return parseTrustedServers(resp.Get("ocs.data")), nil
}

// parseTrustedServers accepts either a url->id object or a list of
// {url,id} objects.
func parseTrustedServers(data gjson.Result) []TrustedServer {
	var out []TrustedServer
	switch {
	case data.IsObject():
		data.ForEach(func(k, v gjson.Result) bool {
			out = append(out, TrustedServer{URL: k.String(), ID: v.String()})
			return true
		})
	case data.IsArray():
		data.ForEach(func(_, v gjson.Result) bool {
			if v.IsObject() {
				out = append(out, TrustedServer{URL: v.Get("url").String(), ID: v.Get("id").String()})
			}
			return true
		})
	}
	return out
}

// AddTrustedServer adds url to the trusted servers. The server answers 201.
func (c *Client) AddTrustedServer(ctx context.Context, serverURL string) (*Response, error) {
	return c.Send(ctx, http.MethodPost, testingPath("/trustedservers"), url.Values{"url": {serverURL}})
}

// DeleteTrustedServer removes url from the trusted servers.
func (c *Client) DeleteTrustedServer(ctx context.Context, serverURL string) (*Response, error) {
	return c.Send(ctx, http.MethodDelete, testingPath("/trustedservers"), url.Values{"url": {serverURL}})
}

// DeleteAllTrustedServers clears the list. The server answers 204.
func (c *Client) DeleteAllTrustedServers(ctx context.Context) (*Response, error) {
	return c.Send(ctx, http.MethodDelete, testingPath("/trustedservers/all"), nil)
}

// SetAppConfig sets one app config value through the testing app.
func (c *Client) SetAppConfig(ctx context.Context, app, parameter, value string) (*Response, error) {
	path := testingPath("/app/%s/%s", url.PathEscape(app), url.PathEscape(parameter))
	return c.Send(ctx, http.MethodPost, path, url.Values{"value": {value}})
}

// SetAppConfigs sets several app config values in one request.
func (c *Client) SetAppConfigs(ctx context.Context, values []AppConfigValue) (*Response, error) {
	form := url.Values{}
	for i, v := range values {
		prefix := "values[" + strconv.Itoa(i) + "]"
		form.Set(prefix+"[appid]", v.App)
		form.Set(prefix+"[configkey]", v.Parameter)
		form.Set(prefix+"[value]", v.Value)
	}
	return c.Send(ctx, http.MethodPost, testingPath("/apps"), form)
}

// ServerRoot returns the server's installation directory.
func (c *Client) ServerRoot(ctx context.Context) (string, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: testingPath("/serverroot"), JSON: true})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocs: server root: unexpected status %d", resp.StatusCode)
	}
	root := strings.TrimSpace(resp.Get("ocs.data.rootDirectory").String())
	if root == "" {
		return "", fmt.Errorf("ocs: server root: empty rootDirectory")
	}
	return root, nil
}

// MkDir creates dir, relative to the server root, on the server host.
func (c *Client) MkDir(ctx context.Context, dir string) (*Response, error) {
	return c.Send(ctx, http.MethodPost, testingPath("/dir"), url.Values{"dir": {dir}})
}

// SetAppEnabled enables or disables an app through the provisioning API.
func (c *Client) SetAppEnabled(ctx context.Context, app string, enabled bool) (*Response, error) {
	method := http.MethodDelete
	if enabled {
		method = http.MethodPost
	}
	return c.Send(ctx, method, "/cloud/apps/"+url.PathEscape(app), nil)
}

// EnabledApps lists the ids of the enabled apps.
func (c *Client) EnabledApps(ctx context.Context) ([]string, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/cloud/apps", Form: url.Values{"filter": {"enabled"}}, JSON: true})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocs: list apps: unexpected status %d", resp.StatusCode)
	}
	var apps []string
	resp.Get("ocs.data.apps").ForEach(func(_, v gjson.Result) bool {
		apps = append(apps, v.String())
		return true
	})
	return apps, nil
}
