package steps

import (
	"fmt"
	"regexp"

	"github.com/loykin/occaccept/internal/scenario"
)

// patternRecorder collects patterns instead of binding them to a godog context.
type patternRecorder struct {
	patterns []string
}

func (r *patternRecorder) Step(expr, _ interface{}) {
	switch e := expr.(type) {
	case string:
		r.patterns = append(r.patterns, e)
	case *regexp.Regexp:
		r.patterns = append(r.patterns, e.String())
	default:
		r.patterns = append(r.patterns, fmt.Sprint(e))
	}
}

// Patterns returns every step pattern RegisterAll binds, in registration
// order.
func Patterns() []string {
	rec := &patternRecorder{}
	New(Deps{}, scenario.New("", nil, scenario.Users{})).RegisterAll(rec)
	return rec.patterns
}
