package handler

import (
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/keybind/internal/middleware"
	"github.com/hitoshi/keybind/internal/model"
)

// mapError はエラー分類からHTTPステータスコードとエラー理由への全域写像。
// 分類外のエラーは内部エラーとして扱う。
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, middleware.ReasonNotFound
	case errors.Is(err, model.ErrInvalidSignature):
		return http.StatusBadRequest, middleware.ReasonInvalidSignature
	case errors.Is(err, model.ErrAlreadyRegistered):
		return http.StatusConflict, middleware.ReasonAlreadyRegistered
	case model.IsStoreError(err):
		return http.StatusInternalServerError, middleware.ReasonDatabaseError
	default:
		return http.StatusInternalServerError, middleware.ReasonInternalError
	}
}

// handleServiceError はサービス層から返されたエラーをHTTPレスポンスに変換する。
// 5xxの詳細はログのみに記録する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, reason := mapError(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", chimw.GetReqID(r.Context())),
			slog.String("error", err.Error()),
		)
	}
	middleware.WriteErrorResponse(w, status, reason)
}
