// Package exitcode defines exit codes for the CLI.
package exitcode

// Process exit codes.
const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task, rejected input).
	UserError = 1

	// AuthError indicates an auth or configuration error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)
