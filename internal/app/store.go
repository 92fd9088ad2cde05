package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/keybind/internal/config"
	"github.com/hitoshi/keybind/internal/database"
	"github.com/hitoshi/keybind/internal/handler"
	"github.com/hitoshi/keybind/internal/repository"
)

// store はopenStoreが返すバインディングストアとその付随リソース。
type store struct {
	repo    repository.BindingRepository
	checker handler.HealthChecker
	close   func() error
}

// openStore は設定に応じたバインディングストアを開く。
// STORE=memoryの場合はデータベースに接続しない。
// それ以外はDATABASE_URLのスキームでドライバを選び、接続を確認する。
func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	if cfg.Store == config.StoreMemory {
		slog.Warn("using in-memory store; bindings are lost on restart")
		return &store{
			repo:  repository.NewMemoryBindingRepo(),
			close: func() error { return nil },
		}, nil
	}

	db, driver, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Store != "" && cfg.Store != string(driver) {
		db.Close()
		return nil, fmt.Errorf("STORE=%s does not match database url scheme %s", cfg.Store, driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established", slog.String("driver", string(driver)))

	var repo repository.BindingRepository
	switch driver {
	case database.DriverSQLite:
		// SQLiteは単一ライターのため接続数を絞る
		db.SetMaxOpenConns(1)
		repo = repository.NewSQLiteBindingRepo(db)
	default:
		repo = repository.NewPostgresBindingRepo(db)
	}

	return &store{repo: repo, checker: db, close: db.Close}, nil
}
