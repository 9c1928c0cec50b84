package cli

import (
	"errors"

	"github.com/mesh-intelligence/usermap/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitCode maps an error to the process exit code. IO failures are system
// errors; everything else (usage, parse, schema, duplicate key, not found,
// cobra argument errors) is a user error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrIO):
		return exitSysError
	default:
		return exitUserError
	}
}
