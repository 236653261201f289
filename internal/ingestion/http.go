package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Invoker runs one invocation. *Service implements it.
type Invoker interface {
	Process(ctx context.Context, ev IngestionEvent) *Result
}

// HTTPHandler binds storage events delivered over HTTP to the pipeline.
type HTTPHandler struct {
	invoker      Invoker
	logger       *zap.Logger
	maxEventSize int64
	timeout      time.Duration
	router       chi.Router
}

// NewHTTPHandler constructs the HTTP handler and wires routes.
func NewHTTPHandler(invoker Invoker, logger *zap.Logger, maxEventSize int64, timeout time.Duration) *HTTPHandler {
	h := &HTTPHandler{
		invoker:      invoker,
		logger:       logger,
		maxEventSize: maxEventSize,
		timeout:      timeout,
	}
	h.buildRouter()
	return h
}

func (h *HTTPHandler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if h.timeout > 0 {
		r.Use(middleware.Timeout(h.timeout))
	}

	r.Get("/healthz", h.handleHealth)
	r.Post("/api/v1/events", h.handleEvent)

	h.router = r
}

// Router exposes the configured chi router.
func (h *HTTPHandler) Router() http.Handler {
	return h.router
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleEvent answers with the invocation response body: the document JSON
// on success, the failure sentinel otherwise. ?verbose=true returns the
// full report instead.
func (h *HTTPHandler) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxEventSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "event too large")
			return
		}
		writeError(w, http.StatusBadRequest, "unreadable event")
		return
	}

	ev, err := DecodeEvent(body)
	if err != nil {
		h.logger.Warn("invalid event", zap.Error(err), zap.String("request_id", middleware.GetReqID(r.Context())))
		writeError(w, http.StatusBadRequest, "invalid event")
		return
	}

	res := h.invoker.Process(r.Context(), ev)
	w.Header().Set("X-Invocation-Id", res.InvocationID)

	if verbose, _ := strconv.ParseBool(r.URL.Query().Get("verbose")); verbose {
		status := http.StatusOK
		if !res.OK() {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, res.Report())
		return
	}

	if !res.OK() {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, res.Response()) //nolint:errcheck
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, res.Response()) //nolint:errcheck
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
