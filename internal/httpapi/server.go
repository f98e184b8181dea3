package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mtbench/internal/manager"
	"mtbench/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	ListTasks() []types.Task
	Status() types.StatusResponse
	Resolve(modelID, task string) (types.ResolveResponse, error)
	Translate(ctx context.Context, req types.TranslateRequest, w io.Writer, flush func()) error
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if settings.CORSEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: settings.CORSOrigins,
			AllowedMethods: corsMethods,
			AllowedHeaders: corsHeaders,
			MaxAge:         300,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	// Compression only for the small JSON endpoints; it would buffer the NDJSON stream.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Compress(5))
		r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, types.ModelsResponse{Models: svc.ListModels()})
		})
		r.Get("/tasks", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, types.TasksResponse{Tasks: svc.ListTasks()})
		})
		r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, svc.Status())
		})
		r.Post("/resolve", func(w http.ResponseWriter, r *http.Request) {
			var req types.ResolveRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			if req.Model == "" || req.Task == "" {
				writeJSONError(w, http.StatusBadRequest, "model and task are required")
				return
			}
			resp, err := svc.Resolve(req.Model, req.Task)
			if err != nil {
				writeJSONError(w, statusFor(err), err.Error())
				return
			}
			writeJSON(w, resp)
		})
	})

	r.Post("/translate", func(w http.ResponseWriter, r *http.Request) {
		var req types.TranslateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Inputs == nil {
			writeJSONError(w, http.StatusBadRequest, "inputs is required")
			return
		}
		observeTranslate(req.Offline, len(req.Inputs))

		// Stream NDJSON via the service; the header is only sent on the first write.
		w.Header().Set("Content-Type", "application/x-ndjson")
		var flush func()
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}
		log := requestLogger(r)
		log.Info().Str("model", req.Model).Str("task", req.Task).
			Int("inputs", len(req.Inputs)).Bool("offline", req.Offline).
			Msg("translate start")
		start := time.Now()
		writer := io.Writer(w)
		if debugEnabled(log) {
			writer = io.MultiWriter(w, &lineLogger{log: log})
		}

		ctx, cancel := translateContext(r)
		defer cancel()
		cw := &countingWriter{w: writer}
		err := svc.Translate(ctx, req, cw, flush)
		if err == nil {
			log.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start)).Msg("translate end")
			return
		}
		if r.Context().Err() != nil || shuttingDown(ctx) {
			// Nobody is listening anymore, or the process is going away.
			log.Info().Err(err).Bool("shutdown", shuttingDown(ctx)).Msg("translate abandoned")
			return
		}
		status := statusFor(err)
		if status == http.StatusTooManyRequests {
			IncrementBackpressure("queue")
		}
		if cw.n == 0 {
			writeJSONError(w, status, err.Error())
		} else {
			// Headers already went out with 200; report the failure in-band.
			translateInbandErrors.Inc()
			_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: err.Error(), Code: status})
		}
		lvl := zerolog.WarnLevel
		if status >= http.StatusInternalServerError {
			lvl = zerolog.ErrorLevel
		}
		log.WithLevel(lvl).Err(err).Int("status", status).Int64("streamed_bytes", cw.n).Dur("dur", time.Since(start)).Msg("translate end")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// decodeJSON enforces the content type and body limit and decodes into v.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, settings.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func debugEnabled(l zerolog.Logger) bool {
	return l.GetLevel() <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel
}

// countingWriter records whether anything was streamed yet.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

var _ Service = (*manager.Manager)(nil)
