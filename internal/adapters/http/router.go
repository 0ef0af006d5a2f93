// Package directoryhttp はディレクトリ操作を JSON over HTTP で公開します。
package directoryhttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/ogurasousui/staff-directory/internal/core/auth"
	"github.com/ogurasousui/staff-directory/internal/core/employee"
	"github.com/ogurasousui/staff-directory/internal/core/user"
	"github.com/ogurasousui/staff-directory/internal/platform/observability"
)

const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
	requestTimeout  = 30 * time.Second
)

// Pinger はストレージの疎通確認です。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps はルーターが利用する依存関係です。
type Deps struct {
	Employees employee.UseCase
	Users     user.UseCase
	Auth      auth.UseCase
	Logger    *slog.Logger
	Metrics   *observability.Metrics
	Storage   Pinger
}

type handler struct {
	employees employee.UseCase
	users     user.UseCase
	auth      auth.UseCase
	logger    *slog.Logger
	storage   Pinger
}

// NewRouter は API ルーターを構築します。
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{
		employees: deps.Employees,
		users:     deps.Users,
		auth:      deps.Auth,
		logger:    logger,
		storage:   deps.Storage,
	}

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
	})

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		accessLog(logger),
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
		secureMiddleware.Handler,
		deps.Metrics.Middleware,
		h.attachSession,
	)

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", deps.Metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Group(func(gr chi.Router) {
			gr.Use(httprate.Limit(loginRateLimit, loginRateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					writeProblem(w, http.StatusTooManyRequests, "Too Many Requests", "")
				}),
			))
			gr.Post("/auth/login", h.handleLogin)
		})
		api.Post("/auth/logout", h.handleLogout)

		api.Get("/employees", h.handleListEmployees)
		api.Post("/employees", h.handleCreateEmployee)
		api.Get("/employees/{id}", h.handleGetEmployee)
		api.Put("/employees/{id}", h.handleUpdateEmployee)
		api.Delete("/employees/{id}", h.handleDeleteEmployee)

		api.Get("/users", h.handleListUsersExtended)
		api.Post("/users", h.handleCreateUser)
		api.Get("/users/{id}", h.handleGetUser)
		api.Put("/users/{id}", h.handleUpdateUser)
		api.Put("/users/{id}/employee", h.handleLinkEmployee)

		api.Get("/roles", h.handleListRoles)
	})

	return r
}
