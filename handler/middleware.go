package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sake-recommendation/internal/auth"
	"sake-recommendation/internal/observability"
	"sake-recommendation/internal/usecase"
)

const (
	headerCorrelationID = "X-Correlation-Id"
	maxCorrelationIDLen = 128
)

type ctxKey int

const (
	ctxKeyCorrelationID ctxKey = iota
	ctxKeyUserID
)

func correlationIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyCorrelationID).(string)
	return v
}

func userIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyUserID).(string)
	return v
}

// correlationID echoes the caller's X-Correlation-Id or mints one, and sets it
// on the response before any handler writes.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(headerCorrelationID))
		if id == "" || len(id) > maxCorrelationIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(headerCorrelationID, id)
		ctx := context.WithValue(r.Context(), ctxKeyCorrelationID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("correlationId", correlationIDFrom(r.Context())),
				zap.String("requestId", chimiddleware.GetReqID(r.Context())),
				zap.String("userAgent", r.UserAgent()),
			)
		})
	}
}

// requestMetrics labels by the matched route pattern so path parameters do
// not explode cardinality.
func requestMetrics(c *observability.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if c == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			c.ObserveRequest(r.Method, route, status, time.Since(start))
		})
	}
}

func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.BearerToken(r.Header.Get("Authorization"))
		if err == nil {
			var userID string
			userID, err = h.authn.Verify(r.Context(), token)
			if err == nil && userID != "" {
				ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		message := usecase.MsgUnauthorized
		var authErr *auth.Error
		if errors.As(err, &authErr) {
			message = authErr.Message
		}
		h.writeError(w, r, &usecase.Error{
			Code:    usecase.ErrorUnauthorized,
			Reason:  "invalid_token",
			Message: message,
			Err:     err,
		})
	})
}
