package handler

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/pos-checkout/internal/core/checkout"
	"github.com/rl1809/pos-checkout/internal/core/service"
)

var errInvalidRequest = errors.New("invalid request")

func httpStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, errInvalidRequest), errors.Is(err, service.ErrInvalidDraft):
		return http.StatusBadRequest, err.Error()
	case checkout.IsPrecondition(err):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, service.ErrSubmissionInProgress):
		return http.StatusConflict, "submission in progress"
	case errors.Is(err, service.ErrSubmissionFailed):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func grpcError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, errInvalidRequest), errors.Is(err, service.ErrInvalidDraft):
		return status.Error(codes.InvalidArgument, err.Error())
	case checkout.IsPrecondition(err):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrSubmissionInProgress):
		return status.Error(codes.Aborted, err.Error())
	case errors.Is(err, service.ErrSubmissionFailed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
