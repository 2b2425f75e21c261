package policy

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/phrazzld/agora-api/internal/config"
	"github.com/phrazzld/agora-api/internal/platform/logger"
	"github.com/phrazzld/agora-api/internal/redact"
)

// Defaults used when the configuration leaves a value unset.
const (
	DefaultMaxAge           = 300
	DefaultCompressionLevel = 6
)

// Observer counts the codings clients offer and the codings applied.
type Observer interface {
	ObserveAcceptEncoding(codings []string)
	ObserveContentEncoding(coding string)
}

// Outcome describes the response being written.
type Outcome struct {
	Kind    Kind
	Success bool
	Status  int
}

// Engine applies the cache and compression policy to serialized responses.
type Engine struct {
	maxAge   int
	level    int
	minBytes int
	observer Observer
	logger   *slog.Logger
}

// NewEngine creates an Engine from configuration. observer may be nil.
func NewEngine(cache config.CacheConfig, comp config.CompressionConfig, observer Observer, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		maxAge:   cache.MaxAgeSeconds,
		level:    comp.Level,
		minBytes: comp.MinBytes,
		observer: observer,
		logger:   log.With(slog.String("component", "response_policy")),
	}
	if e.maxAge == 0 {
		e.maxAge = DefaultMaxAge
	}
	if e.level < 1 || e.level > 9 {
		e.level = DefaultCompressionLevel
	}
	return e
}

// Negotiate parses the request's Accept-Encoding, records it and returns the
// coding to apply, or "" for identity. Only successful queries outside of
// OPTIONS are eligible; the parsed preferences choose among supported codings.
func (e *Engine) Negotiate(r *http.Request, out Outcome) string {
	prefs := ParseAcceptEncoding(r.Header.Get("Accept-Encoding"))
	eligible := r.Method != http.MethodOptions && out.Kind == Query && out.Success

	log := logger.FromContextOrDefault(r.Context(), e.logger)
	if len(prefs) > 0 {
		if e.observer != nil {
			e.observer.ObserveAcceptEncoding(codings(prefs))
		}
		log.Debug("client content coding preferences",
			slog.Any("codings", prefs),
			slog.String("operation_kind", out.Kind.String()),
			slog.Bool("compression_eligible", eligible))
	}
	if !eligible {
		return ""
	}
	return selectCoding(prefs)
}

// Write sets the cache headers, compresses body when allowed and writes the
// response. body must already be the final JSON serialization.
func (e *Engine) Write(w http.ResponseWriter, r *http.Request, out Outcome, body []byte) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	setCacheHeaders(h, out.Kind, out.Success, e.maxAge, body)

	payload := body
	applied := CodingIdentity
	coding := e.Negotiate(r, out)
	if coding != "" && len(body) >= e.minBytes {
		compressed, err := compress(coding, e.level, body)
		if err != nil {
			logger.FromContextOrDefault(r.Context(), e.logger).Error("response compression failed, sending identity",
				redact.ErrorAttr(err), slog.String("coding", coding))
		} else {
			payload = compressed
			applied = coding
			h.Set(HeaderContentEncoding, coding)
		}
	}
	if e.observer != nil {
		e.observer.ObserveContentEncoding(applied)
	}

	h.Set("Content-Length", strconv.Itoa(len(payload)))
	status := out.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(payload); err != nil {
		logger.FromContextOrDefault(r.Context(), e.logger).Debug("failed to write response", redact.ErrorAttr(err))
	}
}
