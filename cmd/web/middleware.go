package main

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/trace"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/myrjola/coachplan/internal/contexthelpers"
	"github.com/myrjola/coachplan/internal/errors"
	"github.com/myrjola/coachplan/internal/logging"
)

// responseRecorder captures the first status code and the body size of a response.
type responseRecorder struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func recordResponse(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK, bytes: 0, written: false}
}

func (rr *responseRecorder) WriteHeader(status int) {
	if !rr.written {
		rr.status = status
		rr.written = true
	}
	rr.ResponseWriter.WriteHeader(status)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	rr.written = true
	n, err := rr.ResponseWriter.Write(b)
	rr.bytes += n
	if err != nil {
		return n, errors.Wrap(err, "write response", slog.Int("bytes", rr.bytes))
	}
	return n, nil
}

func (rr *responseRecorder) Unwrap() http.ResponseWriter {
	return rr.ResponseWriter
}

// secureHeaders sets a locked down policy. The API only serves JSON and the exported plan HTML, which has no scripts.
func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; "+
			"frame-ancestors 'none'; base-uri 'none'; form-action 'none'")
		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-XSS-Protection", "0")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")

		next.ServeHTTP(w, r)
	})
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}

// logAndTraceRequest logs the request and wraps it in a runtime/trace task named after the chi route pattern.
// It runs inside the routed handler, so the route pattern and the plan id are already known.
func (app *application) logAndTraceRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		requestID := rand.Text()
		r = contexthelpers.SetRequestID(r, requestID)
		attrs := []slog.Attr{
			slog.String("trace_id", requestID),
			slog.String("method", r.Method),
			slog.String("route", route),
			slog.String("uri", r.URL.RequestURI()),
		}
		if planID := chi.URLParam(r, "planID"); planID != "" {
			attrs = append(attrs, slog.String("plan_id", planID))
		}
		ctx := logging.WithAttrs(r.Context(), attrs...)

		start := time.Now()
		app.logger.LogAttrs(ctx, slog.LevelDebug, "received request")

		sw := recordResponse(w)
		ctx, task := trace.NewTask(ctx, r.Method+" "+route)
		trace.Log(ctx, "trace_id", requestID)
		next.ServeHTTP(sw, r.WithContext(ctx))
		trace.Log(ctx, "response", fmt.Sprintf("status=%d duration=%v", sw.status, time.Since(start)))
		task.End()

		app.metrics.Requests.WithLabelValues(r.Method, strconv.Itoa(sw.status)).Inc()

		level := slog.LevelInfo
		if sw.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		app.logger.LogAttrs(ctx, level, "request completed", slog.Int("status_code", sw.status),
			slog.Int("response_bytes", sw.bytes), slog.Duration("duration", time.Since(start)))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := errors.DecoratePanic(recover()); err != nil {
				app.serverError(w, r, err)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// mustAuthenticate responds with 401 when the request carries no authenticated session.
func (app *application) mustAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !contexthelpers.IsAuthenticated(r.Context()) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// mustAdmin responds with 403 for authenticated users without admin access.
func (app *application) mustAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !contexthelpers.IsAdmin(r.Context()) {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// crossOriginProtection rejects cross-origin unsafe requests from browsers.
func (app *application) crossOriginProtection(next http.Handler) http.Handler {
	protection := http.NewCrossOriginProtection()
	return protection.Handler(next)
}

// timeout times out the request and cancels the context using http.TimeoutHandler.
// Admins get a longer timeout so that they can call external services.
func (app *application) timeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		timeout := defaultTimeout - (200 * time.Millisecond) //nolint:mnd // writing the response takes time.
		if contexthelpers.IsAdmin(r.Context()) {
			timeout = 29 * time.Second                                   //nolint:mnd // slow external services.
			err := rc.SetWriteDeadline(time.Now().Add(30 * time.Second)) //nolint:mnd // slow external services.
			if err != nil {
				app.serverError(w, r, err)
				return
			}
		}
		sw := recordResponse(w)
		start := time.Now()
		http.TimeoutHandler(next, timeout, `{"error":"timed out"}`).ServeHTTP(sw, r)
		if app.flightRecorder != nil && sw.status == http.StatusServiceUnavailable &&
			time.Since(start) >= timeout {
			app.flightRecorder.CaptureTimeoutTrace(r.Context())
		}
	})
}
