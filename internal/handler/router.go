// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/keybind/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	StatusRecorder    middleware.StatusRecorder
	RequestTimeout    time.Duration
	CORSAllowedOrigin string

	// システム
	Version        string
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// アカウント
	LookupService         LookupServiceInterface
	RegistrationService   RegistrationServiceInterface
	AuthenticationService AuthenticationServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Metrics → Recovery → SecurityHeaders → CORS → Compress → Timeout
//
// Recoveryより外側でログとメトリクスを取るため、panicも500として記録される。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	if deps.CORSAllowedOrigin != "" {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	}
	r.Use(chimw.Compress(5))
	r.Use(middleware.NewTimeoutMiddleware(deps.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusNotFound, middleware.ReasonNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusMethodNotAllowed, middleware.ReasonInvalidRequest)
	})

	systemHandler := NewSystemHandler(deps.Version, deps.HealthChecker)
	accountHandler := NewAccountHandler(deps.LookupService, deps.RegistrationService, deps.AuthenticationService)

	// --- システム ---
	r.Get("/version", systemHandler.Version)
	r.Get("/health", systemHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- アカウント ---
	r.Route("/account", func(r chi.Router) {
		r.Post("/mapping", accountHandler.Mapping)
		r.Post("/register", accountHandler.Register)
		r.Post("/verify", accountHandler.Verify)
	})

	return r
}
