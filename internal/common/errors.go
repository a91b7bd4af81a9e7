package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Terminal pipeline errors surfaced to callers. Everything else is a
// stage-local failure the cascade absorbs.
var (
	ErrMalformedInput  = errors.New("malformed_input")
	ErrUnsupportedType = errors.New("unsupported_type")
	ErrSizeExceeded    = errors.New("size_exceeded")
	ErrUnprocessable   = errors.New("unprocessable")
	ErrNoModelResponse = errors.New("no_model_response")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// GRPCStatus maps a terminal pipeline error onto a gRPC status for the
// transport layer. Unknown errors map to Internal.
func GRPCStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSizeExceeded), errors.Is(err, ErrUnsupportedType), errors.Is(err, ErrMalformedInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrUnprocessable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrNoModelResponse):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return status.Error(codes.InvalidArgument, fmt.Sprintf(format, args...))
}
