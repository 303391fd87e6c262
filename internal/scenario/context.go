// Package scenario holds the state one Gherkin scenario accumulates while
// its steps run. A Context is created by the suite for every scenario and
// passed to each step group; nothing here is shared between scenarios.
package scenario

import (
	"strings"

	"github.com/google/uuid"
	"github.com/loykin/occaccept/internal/env"
	"github.com/loykin/occaccept/internal/ocs"
	"github.com/loykin/occaccept/pkg/fail"
	"github.com/loykin/occaccept/pkg/occ"
)

// Users resolves user names and passwords used by steps.
type Users struct {
	Admin           string
	AdminPassword   string
	DefaultPassword string
	Passwords       map[string]string
}

// ActualUsername maps the "admin" alias onto the configured admin name.
func (u Users) ActualUsername(name string) string {
	switch strings.TrimSpace(name) {
	case "admin", "%admin%":
		if u.Admin != "" {
			return u.Admin
		}
	}
	return name
}

// PasswordFor returns the password of user, falling back to the default.
func (u Users) PasswordFor(user string) string {
	if user == u.Admin {
		return u.AdminPassword
	}
	if p, ok := u.Passwords[user]; ok {
		return p
	}
	return u.DefaultPassword
}

// Credentials returns OCS credentials for user.
func (u Users) Credentials(user string) *ocs.Credentials {
	user = u.ActualUsername(user)
	return &ocs.Credentials{Username: user, Password: u.PasswordFor(user)}
}

// Mount is a local storage mount created during the scenario.
type Mount struct {
	Name string
	ID   string
}

// Context is the per-scenario state.
type Context struct {
	ID    string
	Name  string
	Env   *env.Env
	Users Users

	currentUser  string
	lastResponse *ocs.Response
	lastResult   occ.Result
	hasResult    bool

	mounts []Mount

	importedCertificates []string
	removedCertificates  []string

	lastDeletedJobID string

	techPreviewEnabled bool
	initialTechPreview string
}

// New returns a fresh Context for the named scenario.
func New(name string, e *env.Env, users Users) *Context {
	if e == nil {
		e = env.New()
	}
	return &Context{ID: uuid.NewString(), Name: name, Env: e, Users: users, currentUser: users.Admin}
}

// CurrentUser returns the user "the user" steps act as.
func (c *Context) CurrentUser() string { return c.currentUser }

// SetCurrentUser changes the user "the user" steps act as.
func (c *Context) SetCurrentUser(user string) { c.currentUser = user }

// SetResponse stores the last HTTP response.
func (c *Context) SetResponse(r *ocs.Response) { c.lastResponse = r }

// Response returns the last HTTP response or a structural error when no
// request was sent yet.
func (c *Context) Response() (*ocs.Response, error) {
	if c.lastResponse == nil {
		return nil, fail.Structuralf("no HTTP request has been sent in this scenario")
	}
	return c.lastResponse, nil
}

// SetResult overwrites the single "last command result" slot.
func (c *Context) SetResult(r occ.Result) {
	c.lastResult = r
	c.hasResult = true
}

// Result returns the last command result or a structural error when no
// command ran yet.
func (c *Context) Result() (occ.Result, error) {
	if !c.hasResult {
		return occ.Result{}, fail.Structuralf("no occ command has been run in this scenario")
	}
	return c.lastResult, nil
}

// AddStorageID records the storage id of a mount created by the scenario.
func (c *Context) AddStorageID(mount, id string) {
	for i := range c.mounts {
		if c.mounts[i].Name == mount {
			c.mounts[i].ID = id
			return
		}
	}
	c.mounts = append(c.mounts, Mount{Name: mount, ID: id})
}

// StorageID returns the id recorded for mount.
func (c *Context) StorageID(mount string) (string, error) {
	for _, m := range c.mounts {
		if m.Name == mount {
			return m.ID, nil
		}
	}
	return "", fail.Structuralf("no storage id recorded for mount %q", mount)
}

// LastMount returns the most recently created mount.
func (c *Context) LastMount() (Mount, error) {
	if len(c.mounts) == 0 {
		return Mount{}, fail.Structuralf("no local mounts exist")
	}
	return c.mounts[len(c.mounts)-1], nil
}

// Mounts returns the recorded mounts in creation order.
func (c *Context) Mounts() []Mount {
	out := make([]Mount, len(c.mounts))
	copy(out, c.mounts)
	return out
}

// CertificateImported records an imported certificate by file name.
func (c *Context) CertificateImported(name string) {
	c.importedCertificates = append(c.importedCertificates, name)
}

// CertificateRemoved records a removed certificate.
func (c *Context) CertificateRemoved(name string) {
	c.removedCertificates = append(c.removedCertificates, name)
}

// RemainingCertificates returns imported certificates that were not
// removed, in import order.
func (c *Context) RemainingCertificates() []string {
	removed := make(map[string]struct{}, len(c.removedCertificates))
	for _, r := range c.removedCertificates {
		removed[r] = struct{}{}
	}
	var out []string
	for _, name := range c.importedCertificates {
		if _, ok := removed[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// SetLastDeletedJobID records the id of the last deleted background job.
func (c *Context) SetLastDeletedJobID(id string) { c.lastDeletedJobID = id }

// LastDeletedJobID returns the id of the last deleted background job.
func (c *Context) LastDeletedJobID() string { return c.lastDeletedJobID }

// SetInitialTechPreview stores the value of dav.enable.tech_preview read
// before the scenario ("" when unset) and derives the current flag from it.
func (c *Context) SetInitialTechPreview(value string) {
	c.initialTechPreview = strings.TrimSpace(value)
	c.techPreviewEnabled = c.initialTechPreview == "true"
}

// InitialTechPreview returns the value stored by SetInitialTechPreview.
func (c *Context) InitialTechPreview() string { return c.initialTechPreview }

// TechPreviewEnabled reports the tech preview flag as the scenario left it.
func (c *Context) TechPreviewEnabled() bool { return c.techPreviewEnabled }

// SetTechPreviewEnabled updates the tech preview flag.
func (c *Context) SetTechPreviewEnabled(enabled bool) { c.techPreviewEnabled = enabled }
