package steps

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/occaccept/internal/testserver"
)

func TestPatternsListsRegisteredSteps(t *testing.T) {
	h := newHarness(t, testserver.Options{})
	patterns := Patterns()
	require.Len(t, patterns, len(h.rec.steps))
	for i, p := range patterns {
		assert.Equal(t, h.rec.steps[i].expr, p)
		_, err := regexp.Compile(p)
		assert.NoError(t, err, p)
	}
}
