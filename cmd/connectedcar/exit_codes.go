package main

import (
	stderrors "errors"
	"fmt"

	"github.com/jrsteele09/go-connectedcar/auth"
	"github.com/jrsteele09/go-connectedcar/internal/errors"
)

// Exit codes for CLI commands.
const (
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeInput indicates a missing or invalid selection or argument.
	ExitCodeInput = 2
	// ExitCodeAuthFailed indicates the legacy login or a token request failed.
	ExitCodeAuthFailed = 3
	// ExitCodePackage indicates the package, its resources or its certificate could not be read.
	ExitCodePackage = 4
	// ExitCodeNetwork indicates a transport failure.
	ExitCodeNetwork = 5
)

// UsageError is returned for invalid command input.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

func usageErr(format string, args ...interface{}) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// getExitCode determines the exit code based on the error kind.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	var usage *UsageError
	if stderrors.As(err, &usage) || stderrors.Is(err, auth.NoPackageErr) || stderrors.Is(err, auth.NoOperatorErr) {
		return ExitCodeInput
	}
	switch errors.KindOf(err) {
	case errors.KindSelection:
		return ExitCodeInput
	case errors.KindAuthentication:
		return ExitCodeAuthFailed
	case errors.KindArchive, errors.KindFormat, errors.KindCrypto, errors.KindBrandLookup:
		return ExitCodePackage
	case errors.KindNetwork:
		return ExitCodeNetwork
	default:
		return ExitCodeError
	}
}
