package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hitoshi/keybind/internal/model"
)

// MemoryBindingRepo はプロセス内メモリを使用したバインディングリポジトリ。
// 再起動でデータは失われる。テストおよびSTORE=memoryでの起動用。
type MemoryBindingRepo struct {
	mu       sync.RWMutex
	bindings map[string]model.Binding
}

// NewMemoryBindingRepo はMemoryBindingRepoを生成する。
func NewMemoryBindingRepo() *MemoryBindingRepo {
	return &MemoryBindingRepo{
		bindings: make(map[string]model.Binding),
	}
}

// FindAccountByKey は公開鍵に紐付くアカウントIDを取得する。見つからない場合はfound=falseを返す。
func (r *MemoryBindingRepo) FindAccountByKey(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, false, model.NewStoreError("find account by key", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[string(publicKey)]
	if !ok {
		return uuid.Nil, false, nil
	}
	return b.AccountID, true, nil
}

// CreateBinding はバインディングを作成する。
// 同じ公開鍵が存在する場合はmodel.ErrAlreadyRegisteredを返す。
func (r *MemoryBindingRepo) CreateBinding(ctx context.Context, binding *model.Binding) error {
	if err := ctx.Err(); err != nil {
		return model.NewStoreError("create binding", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := string(binding.PublicKey)
	if _, exists := r.bindings[key]; exists {
		return model.ErrAlreadyRegistered
	}

	stored := *binding
	stored.PublicKey = append([]byte(nil), binding.PublicKey...)
	r.bindings[key] = stored
	return nil
}

// Count は保存されているバインディング数を返す。テスト用。
func (r *MemoryBindingRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bindings)
}

// compile-time interface check
var _ BindingRepository = (*MemoryBindingRepo)(nil)
