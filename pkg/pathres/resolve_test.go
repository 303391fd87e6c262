package pathres

import (
	"strings"
	"testing"

	"github.com/loykin/occaccept/pkg/fail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const capabilitiesXML = `<?xml version="1.0"?>
<ocs>
 <meta><status>ok</status><statuscode>200</statuscode></meta>
 <data>
  <capabilities>
   <core>
    <pollinterval>60</pollinterval>
    <webdav-root>remote.php/webdav</webdav-root>
   </core>
   <files_sharing>
    <api_enabled>1</api_enabled>
    <public>
     <enabled>1</enabled>
     <password><enforced>0</enforced></password>
    </public>
    <providers>
     <provider>local</provider>
     <provider>federated</provider>
    </providers>
   </files_sharing>
  </capabilities>
 </data>
</ocs>`

func capabilities(t *testing.T) *Node {
	t.Helper()
	root, err := FromXML(strings.NewReader(capabilitiesXML))
	require.NoError(t, err)
	caps, ok := root.Descend("data", "capabilities")
	require.True(t, ok)
	return caps
}

func TestLookup_XML(t *testing.T) {
	caps := capabilities(t)

	cases := []struct {
		section, path, want string
	}{
		{"core", "pollinterval", "60"},
		{"core", "webdav-root", "remote.php/webdav"},
		{"files_sharing", "public@@@enabled", "1"},
		{"files_sharing", "public@@@password@@@enforced", "0"},
		{"files_sharing", "providers@@@provider[1]", "federated"},
		{"files_sharing", "providers@@@provider[0]", "local"},
		{"files_sharing", "providers@@@provider", "local"},
		// consecutive separators produce an empty segment that is skipped
		{"files_sharing", "public@@@@@@enabled", "1"},
		{"files_sharing", "@@@api_enabled", "1"},
	}
	for _, c := range cases {
		got, err := Lookup(caps, c.section, c.path)
		if err != nil {
			t.Fatalf("%s %s: %v", c.section, c.path, err)
		}
		if got != c.want {
			t.Fatalf("%s %s: want %q got %q", c.section, c.path, c.want, got)
		}
	}
}

func TestLookup_Idempotent(t *testing.T) {
	caps := capabilities(t)
	first, err := Lookup(caps, "files_sharing", "public@@@enabled")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := Lookup(caps, "files_sharing", "public@@@enabled")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLookup_MissingIsStructural(t *testing.T) {
	caps := capabilities(t)
	for _, p := range []struct{ section, path string }{
		{"nope", "x"},
		{"core", "missing"},
		{"files_sharing", "providers@@@provider[2]"},
		{"files_sharing", "public@@@enabled@@@deeper"},
		{"files_sharing", "providers@@@provider[x]"},
	} {
		_, err := Lookup(caps, p.section, p.path)
		if err == nil {
			t.Fatalf("%s %s: expected error", p.section, p.path)
		}
		if !fail.IsStructural(err) {
			t.Fatalf("%s %s: expected structural error, got %v", p.section, p.path, err)
		}
	}
}

func TestExists(t *testing.T) {
	caps := capabilities(t)
	assert.True(t, Exists(caps, "files_sharing", "public@@@password@@@enforced"))
	assert.True(t, Exists(caps, "files_sharing", "providers@@@provider[1]"))
	assert.True(t, Exists(caps, "core", ""))

	assert.False(t, Exists(caps, "files_sharing", "providers@@@provider[5]"))
	assert.False(t, Exists(caps, "files_sharing", "public@@@missing"))
	assert.False(t, Exists(caps, "absent", "x"))
	assert.False(t, Exists(caps, "files_sharing", "providers@@@provider[oops"))
}

func TestJSONDocument(t *testing.T) {
	body := []byte(`{"ocs":{"data":{"capabilities":{"dav":{"chunking":"1.0","reports":["search-files","filter-files"],"enabled":true,"size":1024}}}}}`)
	root, err := FromJSON(body)
	require.NoError(t, err)
	caps, ok := root.Descend("ocs", "data", "capabilities")
	require.True(t, ok)

	r := Resolver{Separator: "."}
	got, err := r.Lookup(caps, "dav", "reports[1]")
	require.NoError(t, err)
	assert.Equal(t, "filter-files", got)

	got, err = r.Lookup(caps, "dav", "enabled")
	require.NoError(t, err)
	assert.Equal(t, "true", got)

	got, err = r.Lookup(caps, "dav", "size")
	require.NoError(t, err)
	assert.Equal(t, "1024", got)

	assert.False(t, r.Exists(caps, "dav", "reports[2]"))
	_, err = r.Lookup(caps, "dav", "reports[2]")
	assert.True(t, fail.IsStructural(err))
}

func TestParsePath(t *testing.T) {
	segs, err := ParsePath("a@@@b[3]@@@", "")
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, Segment{Name: "a"}, segs[0])
	assert.Equal(t, Segment{Name: "b", Index: 3, HasIndex: true}, segs[1])
	assert.Equal(t, Segment{}, segs[2])

	_, err = ParsePath("a[-1]", ".")
	assert.Error(t, err)
}

func TestNewMapBuilder(t *testing.T) {
	doc := NewMap("app", NewMap("flag", NewScalar("yes"), "flag", NewScalar("no")))
	got, err := Resolver{Separator: "/"}.Lookup(doc, "app", "flag[1]")
	require.NoError(t, err)
	assert.Equal(t, "no", got)
	assert.Equal(t, KindMap, doc.Kind())
	assert.Equal(t, []string{"app"}, doc.Names())
}
