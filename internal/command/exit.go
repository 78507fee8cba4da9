package command

import (
	"fmt"

	"github.com/pkg/errors"

	"zephyr-upload/internal/domain"
)

// Process exit codes.
const (
	ExitOK             = 0
	ExitRecordFailures = 1 // at least one record failed to upload
	ExitConfiguration  = 2 // invalid configuration or command-line usage
	ExitInputParse     = 3 // the result file could not be read or parsed
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(format string, args ...interface{}) error {
	return &ExitError{Code: ExitConfiguration, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var configErr *domain.ConfigurationError
	if errors.As(err, &configErr) {
		return ExitConfiguration
	}
	var parseErr *domain.InputParseError
	if errors.As(err, &parseErr) {
		return ExitInputParse
	}
	return ExitRecordFailures
}
