// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hitoshi/keybind/internal/model"
)

// BindingRepository は公開鍵とアカウントの紐付けの永続化インターフェース。
// 公開鍵→アカウントの唯一の正となるストア。
type BindingRepository interface {
	// FindAccountByKey は公開鍵に紐付くアカウントIDを取得する。
	// 見つからない場合はfound=falseとnilエラーを返す。
	// 永続化層の失敗は*model.StoreErrorとして返す。
	FindAccountByKey(ctx context.Context, publicKey []byte) (accountID uuid.UUID, found bool, err error)

	// CreateBinding はバインディングを1件作成する。
	// 同じ公開鍵がすでに存在する場合はmodel.ErrAlreadyRegisteredを返す。
	// それ以外の永続化層の失敗は*model.StoreErrorとして返す。
	CreateBinding(ctx context.Context, binding *model.Binding) error
}

// decodeAccountID はDBに格納された16バイトのアカウントIDをUUIDに変換する。
func decodeAccountID(op string, raw []byte) (uuid.UUID, error) {
	id, err := uuid.FromBytes(raw)
	if err != nil {
		return uuid.Nil, model.NewStoreError(op, err)
	}
	return id, nil
}
