package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/agora-api/internal/api/shared"
	"github.com/phrazzld/agora-api/internal/apperr"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/redact"
)

// toAppError applies the boundary rule and logs the outcome. Internal
// failures are logged at error level with the redacted cause; caller errors
// at debug level.
func (h *Handler) toAppError(ctx context.Context, err error) *apperr.Error {
	loc := i18n.FromContext(ctx)
	appErr, ok := apperr.As(apperr.Boundary(err, h.catalog.T(loc, i18n.MsgInternalError)))
	if !ok {
		appErr = apperr.Wrap(apperr.InternalFailure, h.catalog.T(loc, i18n.MsgInternalError), err, nil)
	}

	attrs := []any{
		slog.String("code", appErr.Kind.Code()),
		slog.String("message", appErr.Message),
		slog.String("trace_id", shared.GetTraceID(ctx)),
	}
	if cause := appErr.Cause(); cause != nil {
		attrs = append(attrs, redact.ErrorAttr(cause))
	}

	log := logger.FromContextOrDefault(ctx, h.logger)
	if appErr.Kind == apperr.InternalFailure {
		log.Error("operation failed", attrs...)
	} else {
		log.Debug("operation rejected", attrs...)
	}
	return appErr
}

// requestError maps a failure to decode or parse the request.
func (h *Handler) requestError(ctx context.Context, err error) error {
	loc := i18n.FromContext(ctx)
	return apperr.Wrap(apperr.InvalidParameters, h.catalog.T(loc, i18n.MsgInvalidRequest), err, nil)
}

// selectionError maps a root field that does not exist for the operation
// type, or a selection that does not fit the field's type.
func (h *Handler) selectionError(ctx context.Context, field string, err error) error {
	loc := i18n.FromContext(ctx)
	if errors.Is(err, errUnknownRootField) {
		return apperr.Wrap(apperr.OperationNotSupported,
			h.catalog.T(loc, i18n.MsgOperationNotSupported), err, apperr.Details{"field": field})
	}
	return apperr.Wrap(apperr.InvalidParameters,
		h.catalog.T(loc, i18n.MsgInvalidRequest), err, apperr.Details{"field": field})
}
