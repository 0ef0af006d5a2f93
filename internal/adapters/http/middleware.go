package directoryhttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ogurasousui/staff-directory/internal/core/failure"
	"github.com/ogurasousui/staff-directory/internal/core/session"
)

// attachSession は Authorization ヘッダーのトークンを解決して Identity を付与します。拒否はしません。
func (h *handler) attachSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := session.TokenFromAuthorization(r.Header.Get("Authorization"))
		if token == "" || h.auth == nil {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := h.auth.Resolve(r.Context(), token)
		switch {
		case err == nil:
			r = r.WithContext(session.ContextWithIdentity(r.Context(), identity))
		case failure.Retryable(err):
			h.logger.WarnContext(r.Context(), "session store unavailable", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
