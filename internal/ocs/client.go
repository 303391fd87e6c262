package ocs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/loykin/occaccept/internal/auth"
	"github.com/loykin/occaccept/internal/common"
	"github.com/loykin/occaccept/internal/constants"
	"github.com/loykin/occaccept/internal/httpc"
)

// Credentials identify the user a request is sent as. A nil *Credentials
// means "the administrator".
type Credentials struct {
	Username string
	Password string
}

// Client sends OCS requests to one server.
type Client struct {
	BaseURL    string
	APIVersion int
	// Admin authorizes requests sent without explicit credentials.
	Admin auth.Method

	http *resty.Client
}

// New returns a client for baseURL. A nil h uses resty defaults.
func New(baseURL string, apiVersion int, admin auth.Method, h *httpc.Httpc) *Client {
	if apiVersion != 1 && apiVersion != 2 {
		apiVersion = constants.DefaultOCSAPIVersion
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIVersion: apiVersion,
		Admin:      admin,
		http:       h.New(),
	}
}

// Request describes one OCS call. Path is relative to /ocs/v{N}.php.
type Request struct {
	Method string
	Path   string
	Form   url.Values
	// As sends the request with these credentials instead of the admin's.
	As *Credentials
	// JSON asks the server for a JSON envelope (format=json).
	JSON bool
	// APIVersion overrides the client's version when non-zero.
	APIVersion int
}

// URL returns the absolute URL for an OCS path.
func (c *Client) URL(version int, path string) string {
	if version == 0 {
		version = c.APIVersion
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s/ocs/v%d.php%s", c.BaseURL, version, path)
}

// Do sends the request. Non-2xx statuses are returned as a Response, not an
// error; only transport failures are errors.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	method := strings.ToUpper(strings.TrimSpace(r.Method))
	if method == "" {
		method = http.MethodGet
	}
	target := c.URL(r.APIVersion, r.Path)
	logger := common.GetLogger().WithComponent("ocs").WithRequest(method, target)

	req := c.http.R().SetContext(ctx).SetHeader("OCS-APIREQUEST", "true")
	if r.As != nil {
		req.SetBasicAuth(r.As.Username, r.As.Password)
	} else if c.Admin != nil {
		value, err := c.Admin.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("ocs: acquire admin authorization: %w", err)
		}
		req.SetHeader("Authorization", value)
	}
	if r.JSON {
		req.SetQueryParam("format", "json")
	}
	if len(r.Form) > 0 {
		switch method {
		case http.MethodGet, http.MethodDelete:
			// GET and DELETE carry their parameters in the query string
			req.SetQueryParamsFromValues(r.Form)
		default:
			req.SetFormDataFromValues(r.Form)
		}
	}

	logger.Debug("sending ocs request", "form_fields", len(r.Form))
	resp, err := req.Execute(method, target)
	if err != nil {
		logger.Error("ocs request failed", "error", err)
		return nil, fmt.Errorf("ocs: %s %s: %w", method, r.Path, err)
	}
	logger.Debug("received ocs response", "status_code", resp.StatusCode(), "response_size", len(resp.Body()))
	return &Response{StatusCode: resp.StatusCode(), Body: resp.Body(), Header: resp.Header()}, nil
}

// Send is Do for the common case of an admin form request.
func (c *Client) Send(ctx context.Context, method, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: method, Path: path, Form: form})
}
