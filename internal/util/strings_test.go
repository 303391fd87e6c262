package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimHelpers(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, TrimSpaceFields(" a", "b\n"))
	assert.Equal(t, "remote", TrimAndLower("  REMOTE "))

	v, ok := TrimEmptyCheck("   ")
	assert.False(t, ok)
	assert.Equal(t, "", v)

	assert.Equal(t, "string", TrimWithDefault(" ", "string"))
	assert.Equal(t, "integer", TrimWithDefault(" integer", "string"))
}

func TestTrimQuotes(t *testing.T) {
	cases := map[string]string{
		`"value"`:    "value",
		`'value'`:    "value",
		`'it"s'`:     `it"s`,
		`"mixed'`:    `"mixed'`,
		`""`:         "",
		`"`:          `"`,
		`plain`:      "plain",
		`"'double'"`: `'double'`,
	}
	for in, want := range cases {
		assert.Equal(t, want, TrimQuotes(in), in)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"grp1", "grp2"}, SplitList("grp1, grp2,,"))
	assert.Nil(t, SplitList(" , "))
}
