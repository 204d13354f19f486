package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/jobportal/internal/catalog"
	"github.com/hitoshi/jobportal/internal/config"
	"github.com/hitoshi/jobportal/internal/database"
	"github.com/hitoshi/jobportal/internal/gate"
	"github.com/hitoshi/jobportal/internal/handler"
	"github.com/hitoshi/jobportal/internal/logger"
	"github.com/hitoshi/jobportal/internal/metrics"
	"github.com/hitoshi/jobportal/internal/middleware"
	"github.com/hitoshi/jobportal/internal/security"
	"github.com/hitoshi/jobportal/internal/session"
	"github.com/hitoshi/jobportal/internal/storage"
	"github.com/hitoshi/jobportal/internal/store"
	"github.com/hitoshi/jobportal/internal/worker/cleanup"
	fetchpkg "github.com/hitoshi/jobportal/internal/worker/fetch"
)

// cleanupInterval はスナップショット削除ジョブの実行間隔。
const cleanupInterval = 24 * time.Hour

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. ログレベルを反映する
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		slog.Warn("invalid LOG_LEVEL, falling back to info", slog.String("log_level", cfg.LogLevel))
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("storage_driver", cfg.StorageDriver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandWorker:
		return runWorker(ctx, cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// openStorage は設定に応じたスナップショットストレージを開く。
func openStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	s, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.StorageDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
		RedisURL:    cfg.RedisURL,
		RedisTTL:    cfg.SnapshotTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	slog.Info("storage connection established", slog.String("driver", cfg.StorageDriver))
	return s, nil
}

// runServe はAPIサーバーモードで起動する。
// ストレージを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. ストレージ
	kv, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mc := metrics.NewCollector(reg)

	// 3. カタログ
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if cfg.CatalogPath != "" {
		watcher := catalog.NewWatcher(cfg.CatalogPath, cat)
		go watcher.Start(ctx)
		defer watcher.Stop()
	}

	// 4. クライアントごとの状態コンテナ
	rules := gate.DefaultRules()
	latency := store.Latency{
		Login:    cfg.LoginLatency,
		Fetch:    cfg.FetchLatency,
		Mutation: cfg.MutationLatency,
	}
	registry := session.NewRegistry(session.RegistryConfig{
		IdleTTL: cfg.ClientIdleTTL,
		NewStore: func(clientID string) *store.Store {
			return store.New(store.Options{
				ClientID: clientID,
				Storage:  kv,
				Latency:  &latency,
				Logger:   slog.Default(),
				Metrics:  mc,
			})
		},
		Rules:   rules,
		Metrics: mc,
	})
	defer registry.Stop()

	// 5. リソースフィードの取り込み
	guard := security.NewFeedURLGuard()
	for _, u := range cfg.ResourceFeedURLs {
		if err := guard.Validate(u); err != nil {
			return fmt.Errorf("invalid RESOURCE_FEED_URLS entry %q: %w", u, err)
		}
	}
	fetcher := fetchpkg.NewFetcher(cat, guard, slog.Default(), mc, fetchpkg.FetcherConfig{
		Timeout:     cfg.FetchTimeout,
		MaxBodySize: cfg.FetchMaxSize,
		Interval:    cfg.ResourceFeedInterval,
	})
	scheduler := fetchpkg.NewScheduler(fetchpkg.NewSources(cfg.ResourceFeedURLs), fetcher, slog.Default(), 0)
	go scheduler.Start(ctx, cfg.ResourceFeedInterval)

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitPostJob),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Registry: registry,
		SessionCookie: middleware.SessionCookieConfig{
			MaxAge:       cfg.SessionMaxAge,
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		CSRF: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),
		Rules:             rules,
		Catalog:           cat,
		HealthChecker:     kv,
		Metrics:           mc,
		Gatherer:          reg,
	})

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 保持期間を過ぎたスナップショットを日次で削除する。
// ctxがキャンセルされるとシャットダウンする。
func runWorker(ctx context.Context, cfg *config.Config) error {
	// メモリストアはプロセスごとに独立しているため、別プロセスから削除できない
	if cfg.StorageDriver == config.StorageMemory {
		slog.Info("memory storage has no shared snapshots, worker has nothing to do")
		return nil
	}

	kv, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	pruner, ok := kv.(storage.Pruner)
	if !ok {
		slog.Info("storage driver does not support snapshot pruning, worker has nothing to do",
			slog.String("driver", cfg.StorageDriver),
		)
		return nil
	}

	job := cleanup.NewCleanupJob(pruner, slog.Default(), cfg.SnapshotRetention)

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cleanupInterval),
		slog.Duration("retention", cfg.SnapshotRetention),
	)
	job.Start(ctx, cleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.StorageDriver != config.StoragePostgres {
		return fmt.Errorf("migrate requires STORAGE_DRIVER=%s, got %q", config.StoragePostgres, cfg.StorageDriver)
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully", slog.Uint64("version", uint64(version)))
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

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
// 解析できない場合は全体をマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
