package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/hitoshi/keybind/internal/model"
)

// SQLiteBindingRepo はSQLiteを使用したバインディングリポジトリ。
// 単一ノードでの運用や開発環境向け。
type SQLiteBindingRepo struct {
	db *sql.DB
}

// NewSQLiteBindingRepo はSQLiteBindingRepoを生成する。
func NewSQLiteBindingRepo(db *sql.DB) *SQLiteBindingRepo {
	return &SQLiteBindingRepo{db: db}
}

// FindAccountByKey は公開鍵に紐付くアカウントIDを取得する。見つからない場合はfound=falseを返す。
func (r *SQLiteBindingRepo) FindAccountByKey(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error) {
	const op = "find account by key"

	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id FROM public_key_mapping WHERE public_key = ?`,
		publicKey,
	).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, model.NewStoreError(op, err)
	}

	id, err := decodeAccountID(op, raw)
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}

// CreateBinding はバインディングを作成する。
// created_atはUTCのミリ秒で保存する。
func (r *SQLiteBindingRepo) CreateBinding(ctx context.Context, binding *model.Binding) error {
	createdAt := binding.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO public_key_mapping (email, public_key, account_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		binding.Email, binding.PublicKey, binding.AccountID[:], createdAt.UTC().UnixMilli(),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return model.ErrAlreadyRegistered
		}
		return model.NewStoreError("create binding", err)
	}

	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: public_key_mapping.public_key")
}

// compile-time interface check
var _ BindingRepository = (*SQLiteBindingRepo)(nil)
