package ocs

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/loykin/occaccept/pkg/pathres"
	"github.com/tidwall/gjson"
)

// Response is the raw outcome of an OCS call.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (r *Response) isJSON() bool {
	if r == nil {
		return false
	}
	if strings.Contains(r.Header.Get("Content-Type"), "json") {
		return true
	}
	b := strings.TrimSpace(string(r.Body))
	return strings.HasPrefix(b, "{") || strings.HasPrefix(b, "[")
}

// Document parses the body into a path-addressable tree rooted at the
// envelope ("ocs" element or object).
func (r *Response) Document() (*pathres.Node, error) {
	if r == nil {
		return nil, fmt.Errorf("ocs: no response")
	}
	if r.isJSON() {
		root, err := pathres.FromJSON(r.Body)
		if err != nil {
			return nil, err
		}
		if ocs, ok := root.Child("ocs"); ok {
			return ocs, nil
		}
		return root, nil
	}
	return pathres.FromXMLBytes(r.Body)
}

// Data returns the "data" element of the envelope.
func (r *Response) Data() (*pathres.Node, error) {
	doc, err := r.Document()
	if err != nil {
		return nil, err
	}
	data, ok := doc.Child("data")
	if !ok {
		return nil, fmt.Errorf("ocs: response has no data element")
	}
	return data, nil
}

// OCSStatusCode returns meta.statuscode from the envelope.
func (r *Response) OCSStatusCode() (int, error) {
	doc, err := r.Document()
	if err != nil {
		return 0, err
	}
	meta, ok := doc.Descend("meta", "statuscode")
	if !ok {
		return 0, fmt.Errorf("ocs: response has no meta statuscode")
	}
	code, err := strconv.Atoi(strings.TrimSpace(meta.Text()))
	if err != nil {
		return 0, fmt.Errorf("ocs: invalid meta statuscode %q", meta.Text())
	}
	return code, nil
}

// Get evaluates a gjson path against a JSON body.
func (r *Response) Get(path string) gjson.Result {
	if r == nil {
		return gjson.Result{}
	}
	return gjson.GetBytes(r.Body, path)
}
