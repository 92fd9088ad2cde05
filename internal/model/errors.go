package model

import (
	"errors"
	"fmt"
)

// 公開鍵バインディングに関するエラー分類。
// すべてリクエスト単位で終端し、内部でリトライしない。
var (
	// ErrNotFound は公開鍵に対応するバインディングが存在しないことを示す。
	ErrNotFound = errors.New("not found")

	// ErrInvalidSignature は署名検証に失敗したことを示す。
	// base64や鍵長の不正など入力のデコード失敗もここに含める。
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrAlreadyRegistered は公開鍵がすでに別のアカウントに紐付いていることを示す。
	ErrAlreadyRegistered = errors.New("already registered")
)

// StoreError は永続化層の失敗（接続断、タイムアウト、制約違反など）を表す。
// Errの内容はログにのみ出力し、クライアントには返さない。
type StoreError struct {
	Op  string // 失敗した操作名
	Err error  // ドライバから返された元のエラー
}

// Error はerrorインターフェースを実装する。
func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

// Unwrap は元のエラーを返す。
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError はStoreErrorを生成する。
func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// IsStoreError はerrがStoreErrorを含むかどうかを返す。
func IsStoreError(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr)
}
