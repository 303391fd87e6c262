package pathres

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Kind tags the variant held by a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindMap
	KindSeq
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMap:
		return "map"
	case KindSeq:
		return "seq"
	default:
		return "unknown"
	}
}

// Node is an immutable tagged tree node. A map holds named children where
// every name owns a sequence of nodes, mirroring repeated XML elements and
// JSON arrays alike.
type Node struct {
	kind     Kind
	text     string
	names    []string
	children map[string][]*Node
	items    []*Node
}

// NewScalar returns a scalar node holding s.
func NewScalar(s string) *Node { return &Node{kind: KindScalar, text: s} }

// NewSeq returns a sequence node.
func NewSeq(items ...*Node) *Node { return &Node{kind: KindSeq, items: items} }

// NewMap returns a map node built from name/child pairs, kept in order.
// A name may repeat to build a sequence under that name.
func NewMap(pairs ...interface{}) *Node {
	n := &Node{kind: KindMap, children: map[string][]*Node{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		name, _ := pairs[i].(string)
		child, _ := pairs[i+1].(*Node)
		if child == nil {
			continue
		}
		n.add(name, child)
	}
	return n
}

func (n *Node) add(name string, child *Node) {
	if _, ok := n.children[name]; !ok {
		n.names = append(n.names, name)
	}
	n.children[name] = append(n.children[name], child)
}

// Kind returns the variant of n.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindScalar
	}
	return n.kind
}

// Text coerces the node to text. Scalars return their value; maps return
// their own character data (XML) or compact JSON (JSON documents).
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	return n.text
}

// Names returns child names of a map in document order.
func (n *Node) Names() []string {
	if n == nil {
		return nil
	}
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Children returns every child node registered under name.
func (n *Node) Children(name string) []*Node {
	if n == nil || n.kind != KindMap {
		return nil
	}
	return n.children[name]
}

// Child returns the first child under name.
func (n *Node) Child(name string) (*Node, bool) {
	c := n.Children(name)
	if len(c) == 0 {
		return nil, false
	}
	return c[0], true
}

// Items returns the elements of a sequence.
func (n *Node) Items() []*Node {
	if n == nil || n.kind != KindSeq {
		return nil
	}
	return n.items
}

// Descend follows a chain of child names, taking the first node at each level.
func (n *Node) Descend(names ...string) (*Node, bool) {
	cur := n
	for _, name := range names {
		next, ok := cur.Child(name)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// FromXML parses an XML document and returns the node for its root element.
func FromXML(r io.Reader) (*Node, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("pathres: parse xml: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("pathres: xml document has no root element")
	}
	return fromElement(root), nil
}

// FromXMLBytes is FromXML over a byte slice.
func FromXMLBytes(b []byte) (*Node, error) { return FromXML(bytes.NewReader(b)) }

func fromElement(el *etree.Element) *Node {
	kids := el.ChildElements()
	if len(kids) == 0 {
		return NewScalar(el.Text())
	}
	n := &Node{kind: KindMap, text: el.Text(), children: map[string][]*Node{}}
	for _, k := range kids {
		n.add(k.Tag, fromElement(k))
	}
	return n
}

// FromJSON parses a JSON document.
func FromJSON(b []byte) (*Node, error) {
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("pathres: invalid json")
	}
	return fromResult(gjson.ParseBytes(b)), nil
}

func fromResult(res gjson.Result) *Node {
	switch {
	case res.IsObject():
		n := &Node{kind: KindMap, text: compact(res.Raw), children: map[string][]*Node{}}
		res.ForEach(func(key, value gjson.Result) bool {
			name := key.String()
			if value.IsArray() {
				// an array under a name behaves like repeated elements
				if _, ok := n.children[name]; !ok {
					n.names = append(n.names, name)
					n.children[name] = []*Node{}
				}
				value.ForEach(func(_, item gjson.Result) bool {
					n.children[name] = append(n.children[name], fromResult(item))
					return true
				})
				return true
			}
			n.add(name, fromResult(value))
			return true
		})
		return n
	case res.IsArray():
		n := &Node{kind: KindSeq, text: compact(res.Raw)}
		res.ForEach(func(_, item gjson.Result) bool {
			n.items = append(n.items, fromResult(item))
			return true
		})
		return n
	default:
		return NewScalar(scalarText(res))
	}
}

func scalarText(res gjson.Result) string {
	switch res.Type {
	case gjson.Null:
		return ""
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Number:
		// keep the literal to avoid float formatting of integers
		return strings.TrimSpace(res.Raw)
	default:
		return res.String()
	}
}

func compact(raw string) string {
	return string(pretty.Ugly([]byte(raw)))
}
