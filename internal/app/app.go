package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/keybind/internal/account"
	"github.com/hitoshi/keybind/internal/config"
	"github.com/hitoshi/keybind/internal/database"
	"github.com/hitoshi/keybind/internal/handler"
	"github.com/hitoshi/keybind/internal/logger"
	"github.com/hitoshi/keybind/internal/mail"
	"github.com/hitoshi/keybind/internal/metrics"
	"github.com/hitoshi/keybind/internal/signature"
)

// Version はビルド時に -ldflags "-X github.com/hitoshi/keybind/internal/app.Version=..." で埋め込む。
var Version = "dev"

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再設定する
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Warn("invalid LOG_LEVEL, falling back to info", slog.String("error", err.Error()))
	}
	logger.SetupDefault(w, level)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck と version は軽量サブコマンドのため、フル初期化をスキップする
	switch cmd {
	case CommandHealthcheck:
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "3000"
		}
		return runHealthcheck(port)
	case CommandVersion:
		_, err := fmt.Fprintln(w, Version)
		return err
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("version", Version),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// ctxがキャンセルされる（SIGINT/SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	ln, err := net.Listen("tcp", ":"+cfg.ServerPort)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return serve(ctx, cfg, ln)
}

// serve はストアを開き、全依存関係をワイヤリングしてlnでHTTPサーバーを動かす。
func serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	defer ln.Close()

	// 1. ストア
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 3. 登録通知メール
	var notifier *mail.RegistrationNotifier
	var accountNotifier account.Notifier
	if cfg.MailEnabled() {
		notifier = mail.NewRegistrationNotifier(mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}), slog.Default())
		accountNotifier = notifier
		slog.Info("registration notice enabled", slog.String("smtp_host", cfg.SMTPHost))
	}

	// 4. ドメインサービス
	verifier := signature.NewEd25519Verifier()
	lookupService := account.NewLookupService(st.repo, collector)
	registrationService := account.NewRegistrationService(st.repo, verifier, accountNotifier, collector)
	authenticationService := account.NewAuthenticationService(st.repo, verifier, collector)

	// 5. ルーター
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		StatusRecorder:    collector,
		RequestTimeout:    cfg.RequestTimeout,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,

		Version:        Version,
		HealthChecker:  st.checker,
		MetricsHandler: metrics.Handler(reg),

		LookupService:         lookupService,
		RegistrationService:   registrationService,
		AuthenticationService: authenticationService,
	})

	// 6. HTTPサーバー
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if notifier != nil {
		notifier.Wait()
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.Store == config.StoreMemory {
		slog.Info("in-memory store has no schema; nothing to migrate")
		return nil
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
// 認証情報を含まないURL（sqlite://など）はそのまま返す。
func maskDatabaseURL(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return "***"
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return url
	}
	return scheme + "://***@" + rest[at+1:]
}
