package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/keybind/internal/middleware"
)

// HealthChecker は依存先の疎通確認インターフェース。*sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// SystemHandler はバージョン・ヘルスチェックのHTTPハンドラー。
type SystemHandler struct {
	version string
	checker HealthChecker
}

// NewSystemHandler はSystemHandlerを生成する。checkerがnilの場合は常に正常を返す。
func NewSystemHandler(version string, checker HealthChecker) *SystemHandler {
	return &SystemHandler{version: version, checker: checker}
}

// Version はビルドバージョンをプレーンテキストで返す。
// GET /version
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(h.version))
}

// Health はストアへの疎通を確認する。
// GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.checker != nil {
		if err := h.checker.PingContext(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, middleware.ReasonDatabaseError)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
