package common

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

const maskedValue = "***MASKED***"

// SensitivePattern detects one kind of secret in log output.
type SensitivePattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	// Keys are attribute keys whose whole value is masked (case-insensitive).
	Keys []string
}

// DefaultSensitivePatterns covers credentials that reach the logs through
// request dumps, occ command lines and configuration. Token schemes are
// masked before the authorization header itself.
var DefaultSensitivePatterns = []SensitivePattern{
	{
		Name:        "password",
		Regex:       regexp.MustCompile(`(?i)(password|passwd|pwd)(["'\s]*[:=]["'\s]*)([^"',}\]\s&]+)`),
		Replacement: "${1}${2}" + maskedValue,
		Keys:        []string{"password", "passwd", "pwd", "admin_password"},
	},
	{
		Name:        "bearer_token",
		Regex:       regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		Replacement: "Bearer " + maskedValue,
	},
	{
		Name:        "basic_auth",
		Regex:       regexp.MustCompile(`(?i)Basic\s+[A-Za-z0-9+/]+=*`),
		Replacement: "Basic " + maskedValue,
	},
	{
		Name:        "authorization",
		Regex:       regexp.MustCompile(`(?i)(authorization)(["'\s]*[:=]["'\s]*)([^"',}\]\s]+)`),
		Replacement: "${1}${2}" + maskedValue,
		Keys:        []string{"authorization"},
	},
	{
		Name:        "secret",
		Regex:       regexp.MustCompile(`(?i)(secret|client[_-]?secret|token)(["'\s]*[:=]["'\s]*)([^"',}\]\s&]+)`),
		Replacement: "${1}${2}" + maskedValue,
		Keys:        []string{"secret", "client_secret", "token", "access_token"},
	},
}

// Masker replaces sensitive values in strings and log attributes.
type Masker struct {
	mu       sync.RWMutex
	patterns []SensitivePattern
	enabled  bool
}

// NewMasker creates a new masker with default patterns
func NewMasker() *Masker {
	return NewMaskerWithPatterns(DefaultSensitivePatterns)
}

// NewMaskerWithPatterns creates a new masker with custom patterns
func NewMaskerWithPatterns(patterns []SensitivePattern) *Masker {
	p := make([]SensitivePattern, len(patterns))
	copy(p, patterns)
	return &Masker{patterns: p, enabled: true}
}

// SetEnabled enables or disables masking
func (m *Masker) SetEnabled(enabled bool) {
	m.mu.Lock()
	m.enabled = enabled
	m.mu.Unlock()
}

// IsEnabled returns whether masking is enabled
func (m *Masker) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// AddPattern adds a pattern. When Regex is nil one is derived from Keys.
func (m *Masker) AddPattern(pattern SensitivePattern) {
	if pattern.Regex == nil && len(pattern.Keys) > 0 {
		keys := make([]string, len(pattern.Keys))
		for i, k := range pattern.Keys {
			keys[i] = regexp.QuoteMeta(k)
		}
		pattern.Regex = regexp.MustCompile(fmt.Sprintf(`(?i)\b(%s)(\s*[:=]\s*['"]?)([^'",\s}\]]+)`, strings.Join(keys, "|")))
		if pattern.Replacement == "" {
			pattern.Replacement = "${1}${2}" + maskedValue
		}
	}
	if pattern.Regex == nil {
		return
	}
	m.mu.Lock()
	m.patterns = append(m.patterns, pattern)
	m.mu.Unlock()
}

// MaskString masks sensitive information in a string
func (m *Masker) MaskString(input string) string {
	if !m.IsEnabled() {
		return input
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := input
	for _, p := range m.patterns {
		if p.Regex != nil {
			result = p.Regex.ReplaceAllString(result, p.Replacement)
		}
	}
	return result
}

// MaskValue masks value when key is sensitive, otherwise masks secrets
// embedded in its string form. Non-string values pass through unchanged.
func (m *Masker) MaskValue(key string, value interface{}) interface{} {
	if !m.IsEnabled() {
		return value
	}
	lowerKey := strings.ToLower(key)
	m.mu.RLock()
	for _, p := range m.patterns {
		for _, k := range p.Keys {
			if lowerKey == strings.ToLower(k) {
				m.mu.RUnlock()
				return maskedValue
			}
		}
	}
	m.mu.RUnlock()
	if s, ok := value.(string); ok {
		return m.MaskString(s)
	}
	return value
}

var globalMasker = NewMasker()

// GetGlobalMasker returns the global masker instance
func GetGlobalMasker() *Masker {
	return globalMasker
}

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.MaskString(input)
}

// EnableMasking enables/disables global masking
func EnableMasking(enabled bool) {
	globalMasker.SetEnabled(enabled)
}

// IsMaskingEnabled returns whether global masking is enabled
func IsMaskingEnabled() bool {
	return globalMasker.IsEnabled()
}
