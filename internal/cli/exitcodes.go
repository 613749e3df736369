package cli

import (
	"errors"
	"os"

	"github.com/yaklabco/astnav/internal/configloader"
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/fsutil"
	"github.com/yaklabco/astnav/pkg/syntax"
	"github.com/yaklabco/astnav/pkg/treesitter"
)

// Exit codes for astnav.
const (
	// ExitSuccess indicates every command succeeded or was a no-op.
	ExitSuccess = 0

	// ExitCommandFailed indicates at least one command returned an error status.
	ExitCommandFailed = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitServiceError indicates the syntax service could not be started or failed.
	ExitServiceError = 69

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ErrInvalidUsage marks errors caused by bad flags or arguments.
var ErrInvalidUsage = errors.New("invalid usage")

// ExitCodeFromError maps a command error to a process exit code.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *configloader.ValidationError
	var serviceErr *syntax.ServiceError
	var pathErr *os.PathError

	switch {
	case errors.Is(err, ErrCommandFailed):
		return ExitCommandFailed
	case errors.As(err, &validationErr):
		return ExitConfigError
	case errors.Is(err, ErrInvalidUsage),
		errors.Is(err, document.ErrSyntax),
		errors.Is(err, document.ErrInverted),
		errors.Is(err, document.ErrOutOfBounds):
		return ExitInvalidUsage
	case errors.Is(err, treesitter.ErrUnavailable), errors.As(err, &serviceErr):
		return ExitServiceError
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, fsutil.ErrModified),
		errors.As(err, &pathErr):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
