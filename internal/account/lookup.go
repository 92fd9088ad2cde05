package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/keybind/internal/metrics"
	"github.com/hitoshi/keybind/internal/model"
	"github.com/hitoshi/keybind/internal/repository"
)

// LookupService は公開鍵からアカウントIDを引く読み取り専用サービス。
// 署名は検証しない。所持ではなく識別子の解決のみを行う。
type LookupService struct {
	store   repository.BindingRepository
	metrics metrics.MetricsCollector
}

// NewLookupService はLookupServiceを生成する。
func NewLookupService(store repository.BindingRepository, m metrics.MetricsCollector) *LookupService {
	return &LookupService{store: store, metrics: orNop(m)}
}

// Lookup は公開鍵に紐付くアカウントIDを返す。
// 未登録の場合はmodel.ErrNotFound、永続化層の失敗は*model.StoreErrorを返す。
func (s *LookupService) Lookup(ctx context.Context, publicKey []byte) (accountID uuid.UUID, err error) {
	defer observe(s.metrics, metrics.OpLookup, time.Now(), &err)

	id, found, err := s.store.FindAccountByKey(ctx, publicKey)
	if err != nil {
		return uuid.Nil, err
	}
	if !found {
		return uuid.Nil, model.ErrNotFound
	}
	return id, nil
}
