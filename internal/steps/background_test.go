package steps

import (
	"testing"

	"github.com/loykin/occaccept/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackgroundJobsMode(t *testing.T) {
	h := newHarness(t, testserver.Options{})

	h.ok(`the background jobs mode should be "ajax"`)
	h.ok(`the administrator changes the background jobs mode to "cron" using the occ command`)
	h.ok(`the command should have been successful`)
	h.ok(`the command output should contain the text "Set mode for background jobs to 'cron'"`)
	h.ok(`the background jobs mode should be "cron"`)
	h.assertion(`the background jobs mode should be "webcron"`)

	h.ok(`the administrator has changed the background jobs mode to "webcron"`)
	h.ok(`the background jobs mode should be "webcron"`)
	h.assertion(`the administrator has changed the background jobs mode to "nightly"`)
}

func TestDeleteLastBackgroundJob(t *testing.T) {
	h := newHarness(t, testserver.Options{})
	const job = `OCA\Files_Trashbin\BackgroundJob\ExpireTrash`

	h.ok(`the administrator deletes last background job "` + job + `" using the occ command`)
	h.ok(`the command should have been successful`)
	assert.Equal(t, "2", h.steps.Scenario().LastDeletedJobID())
	h.ok(`the last deleted background job "` + job + `" should not be listed in the background jobs queue`)

	h.ok(`the administrator gets all the jobs in the background queue using the occ command`)
	res, err := h.steps.Scenario().Result()
	require.NoError(t, err)
	assert.NotContains(t, res.Stdout, "ExpireTrash")
	assert.Contains(t, res.Stdout, "ExpireVersions")

	// the only job of that class is gone, so a second delete has nothing to find
	h.structural(`the administrator deletes last background job "` + job + `" using the occ command`)

	// a newer job of the same class is not the deleted one
	h.srv.AddJob(job)
	h.ok(`the last deleted background job "` + job + `" should not be listed in the background jobs queue`)

	err = h.structural(`the administrator deletes last background job "NoSuchJob" using the occ command`)
	assert.Contains(t, err.Error(), "Couldn't find jobId for given job: NoSuchJob")
}
