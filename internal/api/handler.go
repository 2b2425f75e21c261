package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/agora-api/internal/api/policy"
	"github.com/phrazzld/agora-api/internal/api/shared"
	"github.com/phrazzld/agora-api/internal/apperr"
	"github.com/phrazzld/agora-api/internal/config"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/service"
	"github.com/vektah/gqlparser/v2/ast"
)

var errUnknownRootField = fmt.Errorf("%w on root type", errUnknownField)

// OperationObserver counts resolved root fields.
type OperationObserver interface {
	ObserveOperation(operation, kind, outcome string)
}

// HandlerDeps are the collaborators of the API handler.
type HandlerDeps struct {
	Users    service.UserService
	Posts    service.PostService
	Comments service.CommentService
	Catalog  *i18n.Catalog
	Policy   *policy.Engine
	// Observer may be nil.
	Observer OperationObserver
	Logger   *slog.Logger
}

// Handler serves operations posted to, or requested from, the API root.
type Handler struct {
	users    service.UserService
	posts    service.PostService
	comments service.CommentService
	catalog  *i18n.Catalog
	policy   *policy.Engine
	observer OperationObserver
	logger   *slog.Logger
}

// Ensure Handler implements http.Handler interface
var _ http.Handler = (*Handler)(nil)

// NewHandler creates a new Handler
func NewHandler(deps HandlerDeps) *Handler {
	if deps.Users == nil || deps.Posts == nil || deps.Comments == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("api handler requires user, post and comment services")
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	catalog := deps.Catalog
	if catalog == nil {
		catalog = i18n.MustDefault()
	}
	engine := deps.Policy
	if engine == nil {
		engine = policy.NewEngine(config.CacheConfig{}, config.CompressionConfig{}, nil, log)
	}
	return &Handler{
		users:    deps.Users,
		posts:    deps.Posts,
		comments: deps.Comments,
		catalog:  catalog,
		policy:   engine,
		observer: deps.Observer,
		logger:   log.With(slog.String("component", "api_handler")),
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := shared.GetRequestContext(r.Context())
	profile := dispatch(rc)
	ctx := i18n.WithLocale(r.Context(), profile.messageLocale(rc))
	r = r.WithContext(ctx)

	req, err := shared.DecodeGraphQLRequest(r)
	if err != nil {
		h.respond(w, r, policy.Query, nil, h.requestError(ctx, err))
		return
	}
	kind := policy.Classify(req.Query, req.OperationName)

	logger.FromContextOrDefault(ctx, h.logger).Debug("executing operation",
		slog.String("operation_name", req.OperationName),
		slog.String("operation_kind", kind.String()))

	data, err := h.execute(ctx, rc, profile, req)
	h.respond(w, r, kind, data, err)
}

func (h *Handler) execute(
	ctx context.Context,
	rc shared.RequestContext,
	profile versionProfile,
	req shared.GraphQLRequest,
) (*object, error) {
	op, err := parseOperation(req)
	if err != nil {
		return nil, h.requestError(ctx, err)
	}

	types := typesFor(profile)
	for _, f := range op.fields {
		if f.name == "__typename" {
			continue
		}
		def, ok := rootField(op.kind, f.name)
		if !ok {
			return nil, h.selectionError(ctx, f.name, fmt.Errorf("%w: %s", errUnknownRootField, f.name))
		}
		if err := types.checkField(def, f, f.name); err != nil {
			return nil, h.selectionError(ctx, f.name, err)
		}
	}

	x := &execution{
		h:       h,
		rc:      rc,
		profile: profile,
		proj:    projector{profile: profile, locale: rc.Locale, catalog: h.catalog},
	}
	data := newObject(len(op.fields))
	for _, f := range op.fields {
		if f.name == "__typename" {
			data.set(f.key(), rootTypename(op.kind))
			continue
		}
		v, err := resolvers[op.kind][f.name](ctx, x, f)
		h.observe(f.name, op.kind, err)
		if err != nil {
			return nil, err
		}
		data.set(f.key(), v)
	}
	return data, nil
}

func rootTypename(kind ast.Operation) string {
	if kind == ast.Mutation {
		return typeMutation
	}
	return typeQuery
}

func (h *Handler) observe(field string, kind ast.Operation, err error) {
	if h.observer == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).Code()
	}
	h.observer.ObserveOperation(field, string(kind), outcome)
}

// respond serializes the envelope and hands it to the response policy.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, kind policy.Kind, data *object, err error) {
	ctx := r.Context()
	env := shared.Envelope{Data: data}
	status := http.StatusOK
	if err != nil {
		appErr := h.toAppError(ctx, err)
		env = shared.ErrorEnvelope(appErr)
		status = appErr.Kind.HTTPStatus()
	}

	body, encErr := shared.EncodeJSON(env)
	if encErr != nil {
		appErr := h.toAppError(ctx, fmt.Errorf("encode response: %w", encErr))
		env = shared.ErrorEnvelope(appErr)
		status = appErr.Kind.HTTPStatus()
		body, _ = shared.EncodeJSON(env)
	}

	h.policy.Write(w, r, policy.Outcome{Kind: kind, Success: !env.Failed(), Status: status}, body)
}
