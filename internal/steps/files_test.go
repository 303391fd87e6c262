package steps

import (
	"testing"

	"github.com/loykin/occaccept/internal/testserver"
	"github.com/stretchr/testify/assert"
)

func newFilesHarness(t *testing.T) *harness {
	return newHarness(t, testserver.Options{
		Users:  map[string]string{"brian": "123456", "carol": "123456"},
		Groups: map[string][]string{"grp1": {"brian"}, "grp2": {"carol"}},
	})
}

func TestScanSteps(t *testing.T) {
	h := newFilesHarness(t)

	h.ok(`the administrator scans the filesystem for all users using the occ command`)
	h.ok(`the command should have been successful`)
	h.ok(`the command output should contain the text "Starting scan for user 3 out of 3 (carol)"`)
	h.ok(`the administrator has scanned the filesystem for all users`)

	h.ok(`the administrator scans the filesystem for user "brian" using the occ command`)
	h.ok(`the command output should contain the text "(brian)"`)
	h.ok(`the administrator has scanned the filesystem for user "carol"`)
	h.assertion(`the administrator has scanned the filesystem for user "nobody"`)

	h.ok(`the administrator scans the filesystem in path "/brian/files" using the occ command`)
	h.ok(`the command should have been successful`)
	h.ok(`the administrator scans the filesystem in path "/carol/files/docs"`)
	h.ok(`the administrator scans the filesystem in path "/nobody/files" using the occ command`)
	h.ok(`the command should have failed with exception text "Unknown user in path /nobody/files"`)

	h.ok(`the administrator scans the filesystem for group "grp1" using the occ command`)
	h.ok(`the command output should contain the text "Scanning group grp1"`)
	h.ok(`the administrator has scanned the filesystem for group "grp2"`)
	h.ok(`the administrator scans the filesystem for groups list "grp1,grp2" using the occ command`)
	h.ok(`the command output should contain the text "Scanning group grp2"`)
	h.ok(`the administrator has scanned the filesystem for groups list "grp1,grp2"`)
	h.assertion(`the administrator has scanned the filesystem for groups list "grp1,grp9"`)

	assert.Contains(t, h.srv.Commands(), "files:scan --group=grp1")
}

func TestCleanupSteps(t *testing.T) {
	h := newFilesHarness(t)

	h.ok(`the administrator cleanups the filesystem for all users using the occ command`)
	h.ok(`the command should have been successful`)

	h.ok(`the administrator empties the trashbin of user "brian" using the occ command`)
	h.ok(`the command output should contain the text "Remove deleted files of   brian"`)
	h.ok(`the administrator empties the trashbin of all users using the occ command`)
	h.ok(`the command output should contain the text "Remove all deleted files"`)

	h.ok(`the administrator deletes all the versions for user "brian"`)
	h.ok(`the command should have been successful`)
	h.ok(`the administrator has cleared the versions for user "carol"`)
	h.assertion(`the administrator has cleared the versions for user "nobody"`)
	h.ok(`the administrator has cleared the versions for all users`)
}
