package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/keybind/internal/model"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pqUniqueViolation = pq.ErrorCode("23505")

// PostgresBindingRepo はPostgreSQLを使用したバインディングリポジトリ。
type PostgresBindingRepo struct {
	db *sql.DB
}

// NewPostgresBindingRepo はPostgresBindingRepoを生成する。
func NewPostgresBindingRepo(db *sql.DB) *PostgresBindingRepo {
	return &PostgresBindingRepo{db: db}
}

// FindAccountByKey は公開鍵に紐付くアカウントIDを取得する。見つからない場合はfound=falseを返す。
func (r *PostgresBindingRepo) FindAccountByKey(ctx context.Context, publicKey []byte) (uuid.UUID, bool, error) {
	const op = "find account by key"

	var raw []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT account_id FROM public_key_mapping WHERE public_key = $1`,
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
// 公開鍵の一意制約違反はmodel.ErrAlreadyRegisteredに変換する。
func (r *PostgresBindingRepo) CreateBinding(ctx context.Context, binding *model.Binding) error {
	createdAt := binding.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO public_key_mapping (email, public_key, account_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		binding.Email, binding.PublicKey, binding.AccountID[:], createdAt.UTC(),
	)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return model.ErrAlreadyRegistered
		}
		return model.NewStoreError("create binding", err)
	}

	return nil
}

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// compile-time interface check
var _ BindingRepository = (*PostgresBindingRepo)(nil)
