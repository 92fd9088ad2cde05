// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/google/uuid"
)

// Binding は公開鍵とアカウントの紐付けを表す。
// 公開鍵が自然キーであり、1つの公開鍵に対して高々1件しか存在しない。
// 登録時に一度だけ作成され、以後更新・削除されない。
type Binding struct {
	AccountID uuid.UUID
	PublicKey []byte
	Email     string
	CreatedAt time.Time
}
