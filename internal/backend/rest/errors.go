package rest

import (
	"context"
	"errors"
	"fmt"

	"github.com/valyala/fasthttp"

	"todo/internal/service"
)

// statusError classifies an HTTP error response.
func statusError(resp *fasthttp.Response) error {
	status := resp.StatusCode()
	msg := errorMessage(resp.Body())
	if msg == "" {
		msg = fasthttp.StatusMessage(status)
	}
	msg = fmt.Sprintf("%d: %s", status, msg)

	switch {
	case status == fasthttp.StatusBadRequest, status == fasthttp.StatusUnprocessableEntity:
		return service.NewError(service.ErrCodeInvalid, msg)
	case status == fasthttp.StatusUnauthorized:
		return service.NewError(service.ErrCodeUnauthorized, msg)
	case status == fasthttp.StatusForbidden:
		return service.NewError(service.ErrCodeForbidden, msg)
	case status == fasthttp.StatusNotFound:
		return service.NewError(service.ErrCodeNotFound, msg)
	case status == fasthttp.StatusConflict:
		return service.NewError(service.ErrCodeConflict, msg)
	case status >= 500:
		return service.NewError(service.ErrCodeUnavailable, msg)
	}
	return service.NewError(service.ErrCodeInternal, msg)
}

// transportError classifies a failure to complete the exchange.
func transportError(err error) error {
	switch {
	case errors.Is(err, fasthttp.ErrTimeout), errors.Is(err, fasthttp.ErrDialTimeout),
		errors.Is(err, context.DeadlineExceeded):
		return service.WrapError(service.ErrCodeTimeout, "request timed out", err)
	case errors.Is(err, context.Canceled):
		return service.WrapError(service.ErrCodeUnavailable, "request cancelled", err)
	}
	return service.WrapError(service.ErrCodeUnavailable, "backend unreachable", err)
}
