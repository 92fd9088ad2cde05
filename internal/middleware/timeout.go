package middleware

import (
	"context"
	"net/http"
	"time"
)

// NewTimeoutMiddleware はリクエストコンテキストにデッドラインを設定するミドルウェアを返す。
// ストア呼び出しはこのデッドラインで打ち切られ、ハンドラーはStoreErrorとして応答する。
// レスポンスの書き込み自体は中断しない。
func NewTimeoutMiddleware(timeout time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
