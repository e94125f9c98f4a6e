package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	logpkg "github.com/kailas-cloud/vecscope/internal/logger"
	"github.com/kailas-cloud/vecscope/internal/metrics"
)

// RouterOptions are the access controls in front of the handlers.
type RouterOptions struct {
	APIKeys   []string
	RateLimit RateLimit
}

// NewRouter builds the gateway router. Recovery runs outermost so that a
// panic anywhere below still produces a JSON 500.
func NewRouter(s *Server, opts RouterOptions, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(RateLimitMiddleware(opts.RateLimit))
	r.Use(metrics.Middleware())
	s.Routes(r)
	return r
}

// JSONRecoverer turns a handler panic into a JSON 500.
func JSONRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler { //nolint:errorlint // sentinel panic value, not a wrapped error
					panic(rvr)
				}
				logger.Error("panic recovered",
					zap.String("request_id", chiMiddleware.GetReqID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rvr),
					zap.Stack("stacktrace"),
				)
				writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WideEventMiddleware puts a request-scoped logger into the context and
// writes one canonical line per request: model and op when the route has
// them, level by status class, probes at debug.
func WideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}
			reqLogger := logger.With(zap.String("request_id", requestID))

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(logpkg.Into(r.Context(), reqLogger)))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
			}
			if model := chi.URLParam(r, "model"); model != "" {
				fields = append(fields, zap.String("model", model))
			}
			if op := chi.URLParam(r, "op"); op != "" {
				fields = append(fields, zap.String("op", op))
			}
			reqLogger.Log(requestLevel(r, ww.Status()), "http_request", fields...)
		})
	}
}

func requestLevel(r *http.Request, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	if _, probe := publicPaths[r.URL.Path]; probe {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
