package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/agora-api/internal/apperr"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/paging"
	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/redact"
	"github.com/phrazzld/agora-api/internal/store"
)

// Detail keys and reasons attached to error extensions.
const (
	detailReason   = "reason"
	detailResource = "resource"
	detailField    = "field"
	detailFields   = "fields"

	reasonEmailExists          = "emailExists"
	reasonIdempotencyKeyExists = "idempotencyKeyExists"
	reasonLoginFailed          = "loginFailed"
	reasonValidation           = "validation"
)

// errs builds localized apperr values and logs the ones that hide a cause.
type errs struct {
	catalog *i18n.Catalog
	logger  *slog.Logger
}

func (e errs) msg(ctx context.Context, key string, params ...string) string {
	return e.catalog.T(i18n.FromContext(ctx), key, params...)
}

func (e errs) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, e.logger)
}

func (e errs) invalidID(ctx context.Context, key, field string) error {
	return apperr.New(apperr.InvalidParameters, e.msg(ctx, key), apperr.Details{detailField: field})
}

func (e errs) notFound(ctx context.Context, key, resource string) error {
	return apperr.New(apperr.ResourceNotFound, e.msg(ctx, key), apperr.Details{detailResource: resource})
}

func (e errs) duplicate(ctx context.Context, err error) error {
	if errors.Is(err, store.ErrEmailExists) {
		return apperr.New(apperr.InvalidBody, e.msg(ctx, i18n.MsgEmailExists),
			apperr.Details{detailReason: reasonEmailExists})
	}
	return apperr.New(apperr.InvalidBody, e.msg(ctx, i18n.MsgIdempotencyKeyExists),
		apperr.Details{detailReason: reasonIdempotencyKeyExists})
}

// internal wraps cause as an InternalFailure and logs it redacted.
func (e errs) internal(ctx context.Context, key string, cause error) error {
	e.log(ctx).Error("operation failed",
		slog.String("message_key", key),
		redact.ErrorAttr(cause))
	return apperr.Wrap(apperr.InternalFailure, e.msg(ctx, key), cause, nil)
}

// list maps a paging.Execute failure. Populator errors are already typed.
func (e errs) list(ctx context.Context, err error, failKey string) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, paging.ErrInvalidRequest):
		return apperr.Wrap(apperr.InvalidParameters, e.msg(ctx, i18n.MsgInvalidPagination), err, nil)
	case errors.Is(err, store.ErrInvalidQuery):
		return apperr.Wrap(apperr.InvalidParameters,
			e.msg(ctx, i18n.MsgInvalidArguments, "filter"), err, nil)
	}
	return e.internal(ctx, failKey, err)
}

// write maps a store failure from a mutation.
func (e errs) write(ctx context.Context, err error, notFoundKey, resource, failKey string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return e.notFound(ctx, notFoundKey, resource)
	case errors.Is(err, store.ErrDuplicate):
		return e.duplicate(ctx, err)
	case errors.Is(err, store.ErrInvalidEntity):
		return apperr.Wrap(apperr.InvalidBody, e.msg(ctx, i18n.MsgValidationFailed), err,
			apperr.Details{detailReason: reasonValidation})
	}
	return e.internal(ctx, failKey, err)
}

// validation runs the validator over input and renders failures in the
// context locale. Missing required fields get their own message.
func (e errs) validation(ctx context.Context, input any) error {
	err := e.catalog.Validator().StructCtx(ctx, input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return e.internal(ctx, i18n.MsgValidationFailed, err)
	}

	loc := i18n.FromContext(ctx)
	fields := e.catalog.FieldErrors(loc, err)

	var missing []string
	emailOnly := true
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, e.catalog.Field(loc, fe.Field()))
		}
		if fe.Tag() != "email" {
			emailOnly = false
		}
	}

	message := e.msg(ctx, i18n.MsgValidationFailed)
	switch {
	case len(missing) > 0:
		message = e.msg(ctx, i18n.MsgMissingRequiredFields, strings.Join(missing, ", "))
	case emailOnly:
		message = e.msg(ctx, i18n.MsgInvalidEmailFormat)
	}
	return apperr.New(apperr.InvalidBody, message, apperr.Details{
		detailReason: reasonValidation,
		detailFields: fields,
	})
}

func (e errs) invalidArguments(ctx context.Context, names ...string) error {
	return apperr.New(apperr.InvalidParameters,
		e.msg(ctx, i18n.MsgInvalidArguments, strings.Join(names, ", ")), nil)
}
