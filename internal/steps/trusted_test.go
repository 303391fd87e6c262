package steps

import (
	"testing"

	"github.com/loykin/occaccept/internal/testserver"
	"github.com/stretchr/testify/assert"
)

func TestTrustedServers(t *testing.T) {
	h := newHarness(t, testserver.Options{})

	h.ok(`the trusted server list should be empty`)
	h.ok(`the administrator has added url "%remote_server%" as trusted server`)
	assert.Equal(t, []string{"https://remote.example.com"}, h.srv.TrustedURLs())

	h.ok(`url "%remote_server%" should be a trusted server`)
	h.ok(`url "https://other.example.com" should not be a trusted server`)

	err := h.assertion(`url "%remote_server%" should not be a trusted server`)
	assert.Contains(t, err.Error(), "URL %remote_server% (https://remote.example.com) is a trusted server but is not expected to be")

	err = h.assertion(`url "https://other.example.com" should be a trusted server`)
	assert.Contains(t, err.Error(), "URL https://other.example.com is not a trusted server but should be")

	// adding the same url again is rejected by the server
	err = h.assertion(`the administrator has added url "%remote_server%" as trusted server`)
	assert.Contains(t, err.Error(), "The request failed with status 409")

	h.ok(`the administrator adds url "%base_url%" as trusted server using the testing API`)
	h.ok(`the trusted server list should include these urls:`, newTable(
		[]string{"url"},
		[]string{"%remote_server%"},
		[]string{"%base_url%"},
	))
	h.assertion(`the trusted server list should include these urls:`, newTable(
		[]string{"url"},
		[]string{"https://missing.example.com"},
	))
	h.assertion(`the trusted server list should be empty`)

	h.ok(`the administrator deletes url "%remote_server%" from trusted servers using the testing API`)
	h.ok(`url "%remote_server%" should not be a trusted server`)

	h.ok(`the trusted server list is cleared`)
	h.ok(`the trusted server list should be empty`)
	h.ok(`the administrator deletes all trusted servers using the testing API`)
	assert.Empty(t, h.srv.TrustedURLs())
}
