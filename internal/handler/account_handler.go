package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hitoshi/keybind/internal/account"
	"github.com/hitoshi/keybind/internal/middleware"
)

// LookupServiceInterface はアカウント検索に必要なサービスインターフェース。
type LookupServiceInterface interface {
	// Lookup は公開鍵に紐付くアカウントIDを返す。
	Lookup(ctx context.Context, publicKey []byte) (uuid.UUID, error)
}

// RegistrationServiceInterface はアカウント登録に必要なサービスインターフェース。
type RegistrationServiceInterface interface {
	// Register はメールアドレスへの署名を検証し、新しいアカウントを登録する。
	Register(ctx context.Context, req account.RegisterRequest) (uuid.UUID, error)
}

// AuthenticationServiceInterface は所持証明に必要なサービスインターフェース。
type AuthenticationServiceInterface interface {
	// Authenticate はメッセージへの署名を検証し、アカウントIDを返す。
	Authenticate(ctx context.Context, req account.AuthenticateRequest) (uuid.UUID, error)
}

// AccountHandler はアカウント関連のHTTPハンドラー。
type AccountHandler struct {
	lookup LookupServiceInterface
	reg    RegistrationServiceInterface
	auth   AuthenticationServiceInterface
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(
	lookup LookupServiceInterface,
	reg RegistrationServiceInterface,
	auth AuthenticationServiceInterface,
) *AccountHandler {
	return &AccountHandler{lookup: lookup, reg: reg, auth: auth}
}

// mappingRequest は公開鍵からアカウントIDを引くリクエストのボディ。
type mappingRequest struct {
	PublicKey wireBytes `json:"public_key"`
}

// registerRequest はアカウント登録リクエストのボディ。
type registerRequest struct {
	PublicKey      string `json:"public_key"`
	Email          string `json:"email"`
	EmailSignature string `json:"email_signature"`
}

// verifyRequest は所持証明リクエストのボディ。
type verifyRequest struct {
	PublicKey        string `json:"public_key"`
	Message          string `json:"message"`
	MessageSignature string `json:"message_signature"`
}

// accountResponse は成功時のレスポンス。
type accountResponse struct {
	AccountID string `json:"account_id"`
}

// Mapping は公開鍵に紐付くアカウントIDを返す。
// POST /account/mapping
func (h *AccountHandler) Mapping(w http.ResponseWriter, r *http.Request) {
	var req mappingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, middleware.ReasonInvalidRequest)
		return
	}

	id, err := h.lookup.Lookup(r.Context(), req.PublicKey)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{AccountID: id.String()})
}

// Register は新しいアカウントを登録する。
// POST /account/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, middleware.ReasonInvalidRequest)
		return
	}

	id, err := h.reg.Register(r.Context(), account.RegisterRequest{
		PublicKey:      req.PublicKey,
		Email:          req.Email,
		EmailSignature: req.EmailSignature,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{AccountID: id.String()})
}

// Verify は登録済みの鍵による署名を検証する。
// POST /account/verify
func (h *AccountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, middleware.ReasonInvalidRequest)
		return
	}

	id, err := h.auth.Authenticate(r.Context(), account.AuthenticateRequest{
		PublicKey:        req.PublicKey,
		Message:          req.Message,
		MessageSignature: req.MessageSignature,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accountResponse{AccountID: id.String()})
}
