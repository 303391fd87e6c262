package steps

import (
	"context"
	"testing"

	"github.com/loykin/occaccept/internal/testserver"
	"github.com/loykin/occaccept/pkg/fail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingSteps(t *testing.T) {
	h := newHarness(t, testserver.Options{})

	h.ok(`the log level should be "2"`)
	h.ok(`the administrator sets the log level to "debug" using the occ command`)
	h.ok(`the command should have been successful`)
	h.ok(`the command output should contain the text "Log level: Debug (0)"`)
	h.ok(`the log level should be "0"`)
	h.assertion(`the log level should be "2"`)

	h.ok(`the administrator sets the log level to "loud" using the occ command`)
	h.ok(`the command should have failed with exception text "Invalid log level"`)

	h.ok(`the administrator sets the timezone to "Europe/Berlin" using the occ command`)
	h.ok(`the command output should contain the text "Log timezone: Europe/Berlin"`)
	h.ok(`the administrator sets the backend to "syslog" using the occ command`)
	h.ok(`the command output should contain the text "Enabled logging backend: syslog"`)

	h.ok(`the administrator enables the ownCloud backend using the occ command`)
	h.ok(`the command output should contain the text "Log backend ownCloud: enabled"`)
	h.ok(`the administrator sets the log file path to "/tmp/owncloud.log" using the occ command`)
	h.ok(`the command output should contain the text "Log file: /tmp/owncloud.log"`)
	h.ok(`the administrator sets the log rotate file size to "1MB" using the occ command`)
	h.ok(`the command output should contain the text "Rotate at: 1048576"`)
}

func TestUpdateChannelAndRepairSteps(t *testing.T) {
	h := newHarness(t, testserver.Options{})
	h.ok(`the update channel should be "stable"`)
	h.assertion(`the update channel should be "daily"`)

	h.ok(`the administrator list the repair steps using the occ command`)
	h.ok(`the command should have been successful`)
	h.ok(`the command output should contain the text "OC\Repair\RepairMimeTypes"`)
}

func TestUpgradeLeavesMaintenanceMode(t *testing.T) {
	h := newHarness(t, testserver.Options{UpgradeExitCode: 3})
	h.ok(`the administrator invokes occ command "config:system:get version"`)
	h.ok(`the administrator runs upgrade routines on local server using the occ command`)
	h.ok(`the command should have been successful`)
	assert.False(t, h.srv.Maintenance())
	assert.Contains(t, h.srv.Commands(), "upgrade")
	assert.Contains(t, h.srv.Commands(), "maintenance:mode --off")

	ok := newHarness(t, testserver.Options{})
	ok.ok(`the administrator runs upgrade routines on local server using the occ command`)
	err := ok.structural(`the command should have been successful`)
	assert.Contains(t, err.Error(), "no occ command")
	assert.NotContains(t, ok.srv.Commands(), "maintenance:mode --off")
}

func TestCertificatesAreRemovedAfterScenario(t *testing.T) {
	h := newHarness(t, testserver.Options{})
	ctx := context.Background()

	h.ok(`the administrator has imported security certificate from the path "/tmp/certs/goodCertificate.crt"`)
	h.ok(`the administrator imports security certificate from the path "/tmp/certs/other.pem"`)
	h.ok(`the command should have been successful`)
	assert.Equal(t, []string{"goodCertificate.crt", "other.pem"}, h.srv.Certificates())

	h.ok(`the administrator removes the security certificate "other.pem"`)
	h.ok(`the command should have been successful`)
	assert.Equal(t, []string{"goodCertificate.crt"}, h.steps.Scenario().RemainingCertificates())

	require.NoError(t, h.steps.AfterScenario(ctx))
	assert.Empty(t, h.srv.Certificates())
	assert.Empty(t, h.steps.Scenario().RemainingCertificates())
}

func TestFailedImportIsStillCleanedUp(t *testing.T) {
	h := newHarness(t, testserver.Options{})

	h.ok(`the administrator imports security certificate from the path "/tmp/certs/invalidCertificate.crt"`)
	h.ok(`the command should have failed with exception text "Certificate could not get parsed."`)
	h.assertion(`the administrator has imported security certificate from the path "/tmp/certs/invalidCertificate.crt"`)

	// the server never stored it, so removal in teardown fails
	err := h.steps.AfterScenario(context.Background())
	require.Error(t, err)
	assert.True(t, fail.IsAssertion(err))
}

func TestTechPreviewRestoredWhenInitiallyUnset(t *testing.T) {
	h := newHarness(t, testserver.Options{})
	ctx := context.Background()

	require.NoError(t, h.steps.BeforeScenario(ctx))
	assert.Equal(t, "", h.steps.Scenario().InitialTechPreview())

	h.ok(`the administrator has enabled DAV tech_preview`)
	v, ok := h.srv.SystemConfig("dav.enable.tech_preview")
	require.True(t, ok)
	assert.Equal(t, "true", v)
	before := len(h.srv.Commands())
	h.ok(`the administrator has enabled DAV tech_preview`)
	assert.Len(t, h.srv.Commands(), before, "already enabled")

	require.NoError(t, h.steps.AfterScenario(ctx))
	_, ok = h.srv.SystemConfig("dav.enable.tech_preview")
	assert.False(t, ok)
}

func TestTechPreviewRestoredWhenInitiallyTrue(t *testing.T) {
	h := newHarness(t, testserver.Options{})
	ctx := context.Background()
	h.ok(`the administrator has added system config key "dav.enable.tech_preview" with value "true" and type "boolean"`)

	require.NoError(t, h.steps.BeforeScenario(ctx))
	assert.True(t, h.steps.Scenario().TechPreviewEnabled())

	h.ok(`the administrator has disabled DAV tech_preview`)
	_, ok := h.srv.SystemConfig("dav.enable.tech_preview")
	assert.False(t, ok)

	require.NoError(t, h.steps.AfterScenario(ctx))
	v, ok := h.srv.SystemConfig("dav.enable.tech_preview")
	require.True(t, ok)
	assert.Equal(t, "true", v)
}

func TestTechPreviewRestoredWhenInitiallyFalse(t *testing.T) {
	h := newHarness(t, testserver.Options{})
	ctx := context.Background()
	h.ok(`the administrator has added system config key "dav.enable.tech_preview" with value "false" and type "boolean"`)

	require.NoError(t, h.steps.BeforeScenario(ctx))
	assert.False(t, h.steps.Scenario().TechPreviewEnabled())

	h.ok(`the administrator enables DAV tech_preview`)
	h.ok(`the command should have been successful`)
	assert.True(t, h.steps.Scenario().TechPreviewEnabled())

	require.NoError(t, h.steps.AfterScenario(ctx))
	_, ok := h.srv.SystemConfig("dav.enable.tech_preview")
	assert.False(t, ok)
	assert.False(t, h.steps.Scenario().TechPreviewEnabled())
}
