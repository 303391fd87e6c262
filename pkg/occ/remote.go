package occ

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/loykin/occaccept/internal/common"
	"github.com/loykin/occaccept/internal/constants"
	"github.com/loykin/occaccept/internal/ocs"
)

// RemoteRunner runs occ through the testing app's occ endpoint, so the
// test host needs no access to the server's file system.
type RemoteRunner struct {
	Client *ocs.Client
}

// NewRemoteRunner returns a RemoteRunner sending requests through c.
func NewRemoteRunner(c *ocs.Client) *RemoteRunner {
	return &RemoteRunner{Client: c}
}

// Run posts the command line and decodes code, stdOut and stdErr from the
// JSON envelope.
func (r *RemoteRunner) Run(ctx context.Context, cmd *Command, env map[string]string) (Result, error) {
	line := cmd.String()
	logger := common.GetLogger().WithComponent("occ-remote").WithCommand(line)

	form := url.Values{"command": {line}}
	for k, v := range env {
		form.Set("env_variables["+k+"]", v)
	}
	resp, err := r.Client.Do(ctx, ocs.Request{
		Method: http.MethodPost,
		Path:   constants.TestingAppPath + "/occ",
		Form:   form,
		JSON:   true,
	})
	if err != nil {
		return Result{}, err
	}
	if resp.StatusCode != http.StatusOK {
		logger.Error("occ endpoint rejected the command", "status_code", resp.StatusCode)
		return Result{}, fmt.Errorf("occ: remote endpoint answered %d for %q", resp.StatusCode, line)
	}
	data := resp.Get("ocs.data")
	if !data.Exists() {
		return Result{}, fmt.Errorf("occ: remote response for %q has no data", line)
	}
	res := Result{
		ExitCode: int(data.Get("code").Int()),
		Stdout:   data.Get("stdOut").String(),
		Stderr:   data.Get("stdErr").String(),
	}
	logger.Debug("occ command finished", "exit_code", res.ExitCode)
	return res, nil
}
