package http

import (
	"context"
	"errors"
	"net/http"

	"cmr/internal/core/application/usecases/commands"
	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	codeInvalidRequest       = "invalid_request"
	codeNotFound             = "not_found"
	codeMethodNotAllowed     = "method_not_allowed"
	codeVersionConflict      = "version_conflict"
	codeAlreadyRegistered    = "already_registered"
	codeOutOfOrderMilestone  = "out_of_order_milestone"
	codeIllegalTransition    = "illegal_transition"
	codeRecordLocked         = "record_locked"
	codeNotDeliverable       = "not_deliverable"
	codeAlreadyCompleted     = "already_completed"
	codeTimeout              = "timeout"
	codeInternal             = "internal_error"
	internalErrorDescription = "internal server error"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code      string `json:"error"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type errorMapping struct {
	target    error
	status    int
	code      string
	retryable bool
}

// Order matters: domain sentinels come before the generic validation errors.
var errorMappings = []errorMapping{
	{errs.ErrVersionConflict, http.StatusConflict, codeVersionConflict, true},
	{errs.ErrObjectNotFound, http.StatusNotFound, codeNotFound, false},
	{commands.ErrShipmentAlreadyRegistered, http.StatusConflict, codeAlreadyRegistered, false},
	{shipment.ErrOutOfOrderMilestone, http.StatusUnprocessableEntity, codeOutOfOrderMilestone, false},
	{shipment.ErrIllegalTransition, http.StatusUnprocessableEntity, codeIllegalTransition, false},
	{shipment.ErrRecordLocked, http.StatusConflict, codeRecordLocked, false},
	{shipment.ErrNotDeliverable, http.StatusUnprocessableEntity, codeNotDeliverable, false},
	{shipment.ErrAlreadyCompleted, http.StatusConflict, codeAlreadyCompleted, false},
	{errs.ErrValueIsRequired, http.StatusBadRequest, codeInvalidRequest, false},
	{errs.ErrValueIsInvalid, http.StatusBadRequest, codeInvalidRequest, false},
	{errs.ErrValueIsOutOfRange, http.StatusBadRequest, codeInvalidRequest, false},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, codeTimeout, false},
}

// toError maps an application error to its HTTP status and body. Unknown errors
// become 500 without leaking their message.
func toError(err error) (int, Error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, Error{Code: m.code, Message: err.Error(), Retryable: m.retryable}
		}
	}
	return http.StatusInternalServerError, Error{Code: codeInternal, Message: internalErrorDescription}
}

func writeError(c echo.Context, status int, code, message string, retryable bool) error {
	return c.JSON(status, Error{Code: code, Message: message, Retryable: retryable})
}

func (s *Server) fail(c echo.Context, err error) error {
	status, body := toError(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.JSON(status, body)
}
