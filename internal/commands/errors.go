package commands

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/viewmodel"
)

// backendFailure reports err and maps it to an exit code.
func backendFailure(errOut io.Writer, err error) int {
	var sErr *service.Error
	if !errors.As(err, &sErr) {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	switch sErr.Code {
	case service.ErrCodeUnauthorized, service.ErrCodeForbidden:
		fmt.Fprintf(errOut, "error: auth error: %s\n", sErr.Message)
		return exitcode.AuthError
	case service.ErrCodeNotFound:
		fmt.Fprintf(errOut, "error: not found: %s\n", sErr.Message)
		return exitcode.UserError
	case service.ErrCodeInvalid, service.ErrCodeConflict:
		fmt.Fprintf(errOut, "error: rejected: %s\n", sErr.Message)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: backend error: %s\n", sErr.Message)
	return exitcode.BackendError
}

// newModel builds a view-model for the configured user.
func newModel(env *Env, opts viewmodel.Options) *viewmodel.Model {
	cfg := env.Config
	if cfg == nil {
		cfg = config.Default("")
	}
	opts.UserID = cfg.API.UserID
	if opts.Limit == 0 {
		opts.Limit = cfg.UI.PageLimit
	}
	opts.SurfaceWriteErrors = cfg.UI.SurfaceWriteErrors
	opts.Logger = env.Logger
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return viewmodel.New(env.Service, opts)
}
