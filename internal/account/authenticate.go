package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/keybind/internal/metrics"
	"github.com/hitoshi/keybind/internal/model"
	"github.com/hitoshi/keybind/internal/repository"
)

// AuthenticateRequest は所持証明の入力。公開鍵と署名はbase64文字列のまま受け取る。
type AuthenticateRequest struct {
	PublicKey        string
	Message          string
	MessageSignature string
}

// AuthenticationService は登録済みの鍵で任意メッセージへの署名を検証する。
// 状態は変更しない。
type AuthenticationService struct {
	store    repository.BindingRepository
	verifier SignatureVerifier
	metrics  metrics.MetricsCollector
}

// NewAuthenticationService はAuthenticationServiceを生成する。
func NewAuthenticationService(
	store repository.BindingRepository,
	verifier SignatureVerifier,
	m metrics.MetricsCollector,
) *AuthenticationService {
	return &AuthenticationService{
		store:    store,
		verifier: verifier,
		metrics:  orNop(m),
	}
}

// Authenticate はmessageへの署名を検証し、鍵に紐付くアカウントIDを返す。
//
// 未登録の鍵は署名を検証せずにmodel.ErrNotFoundを返す。
// 公開鍵のbase64が不正な場合はどのバインディングも指し得ないため、
// 検索せずにmodel.ErrInvalidSignatureを返す。
func (s *AuthenticationService) Authenticate(ctx context.Context, req AuthenticateRequest) (accountID uuid.UUID, err error) {
	defer observe(s.metrics, metrics.OpAuthenticate, time.Now(), &err)

	publicKey, err := decode(req.PublicKey)
	if err != nil {
		return uuid.Nil, err
	}

	id, found, err := s.store.FindAccountByKey(ctx, publicKey)
	if err != nil {
		return uuid.Nil, err
	}
	if !found {
		return uuid.Nil, model.ErrNotFound
	}

	sig, err := decode(req.MessageSignature)
	if err != nil {
		return uuid.Nil, err
	}

	if !s.verifier.Verify(publicKey, []byte(req.Message), sig) {
		return uuid.Nil, model.ErrInvalidSignature
	}

	return id, nil
}
