package middleware

import (
	"encoding/json"
	"net/http"
)

// 機械可読なエラー理由
const (
	ReasonNotFound          = "not found"
	ReasonInvalidSignature  = "invalid signature"
	ReasonAlreadyRegistered = "already registered"
	ReasonDatabaseError     = "database error"
	ReasonInternalError     = "internal error"
	ReasonInvalidRequest    = "invalid request"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Error string `json:"error"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// reasonには短い機械可読な理由のみを渡し、内部の詳細は含めないこと。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{Error: reason})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的な理由を返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, ReasonInternalError)
}
