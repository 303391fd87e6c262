package main

import (
	"errors"
	"os"

	"github.com/loykin/occaccept/cmd/occaccept/commands"
	"github.com/loykin/occaccept/internal/common"
)

// ExitHandler provides a testable way to handle program termination
type ExitHandler interface {
	Exit(code int)
	LogFatalError(err error, msg string, keyvals ...any)
}

// DefaultExitHandler implements ExitHandler for production use
type DefaultExitHandler struct {
	logger *common.Logger
}

// NewDefaultExitHandler creates a new default exit handler
func NewDefaultExitHandler() *DefaultExitHandler {
	return &DefaultExitHandler{
		logger: common.GetLogger().WithComponent("main"),
	}
}

func (h *DefaultExitHandler) Exit(code int) {
	os.Exit(code)
}

func (h *DefaultExitHandler) LogFatalError(err error, msg string, keyvals ...any) {
	allKeyvals := append([]any{"error", err}, keyvals...)
	h.logger.Error(msg, allKeyvals...)
	h.Exit(1)
}

var exitHandler ExitHandler = NewDefaultExitHandler()

// handleResult maps a command error to a process exit. A failed suite exits
// with godog's status and no extra log line; it already reported.
func handleResult(h ExitHandler, err error) {
	if err == nil {
		return
	}
	var ee *commands.ExitError
	if errors.As(err, &ee) {
		h.Exit(ee.Code)
		return
	}
	h.LogFatalError(err, "command execution failed")
}
