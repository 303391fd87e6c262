package pathres

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loykin/occaccept/pkg/fail"
)

// DefaultSeparator splits capability paths in step text, e.g.
// "files_sharing@@@public@@@enabled". Dots are not used by default because
// capability names may contain them.
const DefaultSeparator = "@@@"

// Segment is one step of a path: a child name and an optional index into
// the nodes registered under that name.
type Segment struct {
	Name     string
	Index    int
	HasIndex bool
}

func (s Segment) String() string {
	if s.HasIndex {
		return fmt.Sprintf("%s[%d]", s.Name, s.Index)
	}
	return s.Name
}

// ParsePath splits expr by sep and parses each "name" or "name[N]" segment.
// Empty segments are kept as zero Segments and skipped during traversal.
func ParsePath(expr, sep string) ([]Segment, error) {
	if sep == "" {
		sep = DefaultSeparator
	}
	parts := strings.Split(expr, sep)
	out := make([]Segment, 0, len(parts))
	for _, p := range parts {
		seg, err := parseSegment(p)
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, nil
}

func parseSegment(p string) (Segment, error) {
	open := strings.IndexByte(p, '[')
	if open < 0 {
		return Segment{Name: p}, nil
	}
	end := strings.IndexByte(p[open:], ']')
	if end < 0 {
		return Segment{}, fmt.Errorf("segment %q: missing closing bracket", p)
	}
	raw := strings.TrimSpace(p[open+1 : open+end])
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return Segment{}, fmt.Errorf("segment %q: index %q is not a non-negative integer", p, raw)
	}
	return Segment{Name: p[:open], Index: idx, HasIndex: true}, nil
}

// Resolver walks paths through a response document.
// The zero value uses DefaultSeparator.
type Resolver struct {
	Separator string
}

// Lookup resolves path below the top-level section and returns the value as
// text. Any missing section, segment or index is a structural error.
func (r Resolver) Lookup(doc *Node, section, path string) (string, error) {
	segs, err := ParsePath(path, r.Separator)
	if err != nil {
		return "", fail.WrapStructural(err, "invalid path "+strconv.Quote(path))
	}
	cur, ok := doc.Child(section)
	if !ok {
		return "", fail.Structuralf("section %q not found in response", section)
	}
	for _, seg := range segs {
		if seg.Name == "" && !seg.HasIndex {
			continue
		}
		next, ok := step(cur, seg)
		if !ok {
			return "", fail.Structuralf("path %q: segment %q not found under section %q", path, seg.String(), section)
		}
		cur = next
	}
	return cur.Text(), nil
}

// Exists reports whether path resolves below section. It never fails:
// a missing segment, missing index or malformed path yields false.
func (r Resolver) Exists(doc *Node, section, path string) bool {
	segs, err := ParsePath(path, r.Separator)
	if err != nil {
		return false
	}
	cur, ok := doc.Child(section)
	if !ok {
		return false
	}
	for _, seg := range segs {
		if seg.Name == "" && !seg.HasIndex {
			continue
		}
		next, ok := step(cur, seg)
		if !ok {
			return false
		}
		cur = next
	}
	return true
}

func step(cur *Node, seg Segment) (*Node, bool) {
	var nodes []*Node
	if seg.Name == "" {
		nodes = cur.Items()
	} else {
		nodes = cur.Children(seg.Name)
	}
	idx := 0
	if seg.HasIndex {
		idx = seg.Index
	}
	if idx >= len(nodes) {
		return nil, false
	}
	return nodes[idx], true
}

// Lookup resolves path with the default separator.
func Lookup(doc *Node, section, path string) (string, error) {
	return Resolver{}.Lookup(doc, section, path)
}

// Exists checks path with the default separator.
func Exists(doc *Node, section, path string) bool {
	return Resolver{}.Exists(doc, section, path)
}
