package env

import (
	"net/url"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type Map map[string]string

// New returns an Env with both layers initialized.
func New() *Env {
	return &Env{Global: Map{}, Scenario: Map{}}
}

// Env holds the values behind inline codes such as %base_url% in step text.
// Lookups give precedence to Scenario over Global. Zero values (nil maps)
// are handled gracefully.
type Env struct {
	// Global comes from configuration and applies to the whole run.
	Global Map `yaml:"-" mapstructure:"-"`
	// Scenario is reset for every scenario.
	Scenario Map `yaml:"-" mapstructure:"-"`
}

// UnmarshalYAML decodes a plain mapping under the `env` key into Global.
func (e *Env) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	var m map[string]string
	if err := value.Decode(&m); err != nil {
		return err
	}
	e.Global = m
	return nil
}

// ForScenario returns an Env sharing a copy of the global layer and an
// empty scenario layer.
func (e *Env) ForScenario() *Env {
	out := New()
	if e != nil {
		for k, v := range e.Global {
			out.Global[k] = v
		}
	}
	return out
}

// Set stores a scenario value.
func (e *Env) Set(key, value string) {
	if e.Scenario == nil {
		e.Scenario = Map{}
	}
	e.Scenario[key] = value
}

// Lookup searches Scenario first, then Global.
func (e *Env) Lookup(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	if v, ok := e.Scenario[key]; ok {
		return v, true
	}
	if v, ok := e.Global[key]; ok {
		return v, true
	}
	return "", false
}

var inlineCode = regexp.MustCompile(`%([A-Za-z0-9_]+)%`)

// Substitute replaces every known %code% in s. Unknown codes are kept so
// that literal percent signs in test data survive.
func (e *Env) Substitute(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	return inlineCode.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := e.Lookup(m[1 : len(m)-1]); ok {
			return v
		}
		return m
	})
}

// ServerCodes builds the standard inline codes for a local and an optional
// remote server.
func ServerCodes(baseURL, remoteURL, adminUser, adminPassword string) Map {
	m := Map{
		"base_url":                baseURL,
		"local_server":            baseURL,
		"base_url_without_scheme": withoutScheme(baseURL),
		"admin_username":          adminUser,
		"admin_password":          adminPassword,
	}
	if remoteURL != "" {
		m["remote_server"] = remoteURL
		m["remote_server_without_scheme"] = withoutScheme(remoteURL)
	}
	return m
}

func withoutScheme(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	return strings.TrimPrefix(raw, u.Scheme+"://")
}
