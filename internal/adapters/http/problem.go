package directoryhttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ogurasousui/staff-directory/internal/core/failure"
)

// ProblemDetail は RFC7807 の problem details です。
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

// respondError は失敗種別を HTTP ステータスへ変換して返します。
// クライアントにはドメインの文言だけを返し、ラップされた原因はログへ出力します。
func (h *handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, title := http.StatusInternalServerError, "Internal Error"
	detail := failure.Message(err)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, title, detail = http.StatusServiceUnavailable, "Request Aborted", "request aborted"
	case errors.Is(err, failure.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", "Bearer")
		status, title = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, failure.ErrNotFound):
		status, title = http.StatusNotFound, "Not Found"
	case errors.Is(err, failure.ErrConstraintViolation):
		status, title = http.StatusConflict, "Constraint Violation"
	case errors.Is(err, failure.ErrInvalidRole):
		status, title = http.StatusUnprocessableEntity, "Invalid Role"
	case errors.Is(err, failure.ErrInvalidArgument):
		status, title = http.StatusBadRequest, "Validation Failed"
	case errors.Is(err, failure.ErrConnectionFailure):
		w.Header().Set("Retry-After", "1")
		status, title, detail = http.StatusServiceUnavailable, "Storage Unavailable", ""
	default:
		detail = ""
	}

	level := slog.LevelDebug
	switch {
	case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
		level = slog.LevelError
	case status == http.StatusServiceUnavailable:
		level = slog.LevelWarn
	}
	h.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)

	writeProblem(w, status, title, detail)
}

func decodeJSON(r *http.Request, target any) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return failure.Wrap(failure.ErrInvalidArgument, err)
	}
	return nil
}
