package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/keybind/internal/metrics"
	"github.com/hitoshi/keybind/internal/model"
	"github.com/hitoshi/keybind/internal/repository"
)

// RegisterRequest はアカウント登録の入力。公開鍵と署名はbase64文字列のまま受け取る。
type RegisterRequest struct {
	PublicKey      string
	Email          string
	EmailSignature string
}

// RegistrationService は公開鍵とメールアドレスの署名を検証してバインディングを作成する。
// このパッケージで唯一状態を変更するサービス。
type RegistrationService struct {
	store    repository.BindingRepository
	verifier SignatureVerifier
	notifier Notifier
	metrics  metrics.MetricsCollector

	newID func() (uuid.UUID, error)
	now   func() time.Time
}

// NewRegistrationService はRegistrationServiceを生成する。
// notifierがnilの場合は通知を行わない。
func NewRegistrationService(
	store repository.BindingRepository,
	verifier SignatureVerifier,
	notifier Notifier,
	m metrics.MetricsCollector,
) *RegistrationService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &RegistrationService{
		store:    store,
		verifier: verifier,
		notifier: notifier,
		metrics:  orNop(m),
		newID:    uuid.NewRandom,
		now:      time.Now,
	}
}

// Register はメールアドレスへの署名で鍵の所持を確認し、新しいアカウントIDを発行する。
//
// 処理順序: デコード → 署名検証 → 既存バインディング確認 → ID生成 → 作成 → 通知
//
// 署名が不正な場合はストアに一切触れずmodel.ErrInvalidSignatureを返す。
// 公開鍵が登録済みの場合はmodel.ErrAlreadyRegisteredを返す。
// 同時登録で事前確認をすり抜けた場合もストアの一意制約で同じエラーになる。
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest) (accountID uuid.UUID, err error) {
	defer observe(s.metrics, metrics.OpRegister, time.Now(), &err)

	publicKey, err := decode(req.PublicKey)
	if err != nil {
		return uuid.Nil, err
	}
	sig, err := decode(req.EmailSignature)
	if err != nil {
		return uuid.Nil, err
	}

	if !s.verifier.Verify(publicKey, []byte(req.Email), sig) {
		return uuid.Nil, model.ErrInvalidSignature
	}

	if _, found, err := s.store.FindAccountByKey(ctx, publicKey); err != nil {
		return uuid.Nil, err
	} else if found {
		return uuid.Nil, model.ErrAlreadyRegistered
	}

	id, err := s.newID()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate account id: %w", err)
	}

	binding := &model.Binding{
		AccountID: id,
		PublicKey: publicKey,
		Email:     req.Email,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateBinding(ctx, binding); err != nil {
		if errors.Is(err, model.ErrAlreadyRegistered) {
			slog.Info("concurrent registration lost the race",
				slog.String("account_id", id.String()),
			)
		}
		return uuid.Nil, err
	}

	slog.Info("account registered",
		slog.String("account_id", id.String()),
	)

	s.notifier.NotifyRegistered(ctx, binding)

	return id, nil
}
