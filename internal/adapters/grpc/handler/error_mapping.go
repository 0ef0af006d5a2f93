package handler

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/staff-directory/internal/core/failure"
)

// statusError はクライアントへ返す Status と、ログ用の原因を併せ持ちます。
// grpc は GRPCStatus の値だけを送信し、Error はインターセプターのログに使われます。
type statusError struct {
	st    *status.Status
	cause error
}

func (e *statusError) Error() string {
	return e.st.Code().String() + ": " + e.cause.Error()
}

func (e *statusError) GRPCStatus() *status.Status { return e.st }

func (e *statusError) Unwrap() error { return e.cause }

func toStatusError(err error) error {
	if err == nil {
		return nil
	}

	code := codes.Internal
	msg := failure.Message(err)
	switch {
	case errors.Is(err, context.Canceled):
		code, msg = codes.Canceled, context.Canceled.Error()
	case errors.Is(err, context.DeadlineExceeded):
		code, msg = codes.DeadlineExceeded, context.DeadlineExceeded.Error()
	case errors.Is(err, failure.ErrUnauthenticated):
		code = codes.Unauthenticated
	case errors.Is(err, failure.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, failure.ErrConstraintViolation):
		code = codes.AlreadyExists
	case errors.Is(err, failure.ErrInvalidRole), errors.Is(err, failure.ErrInvalidArgument):
		code = codes.InvalidArgument
	case errors.Is(err, failure.ErrConnectionFailure):
		code = codes.Unavailable
	default:
		msg = "internal error"
	}
	return &statusError{st: status.New(code, msg), cause: err}
}
