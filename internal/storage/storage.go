// Package storage はクライアント状態スナップショットの永続化層を提供する。
package storage

import (
	"context"
	"fmt"
	"time"
)

// KV はスナップショットをキー単位で読み書きするインターフェース。
// Loadはキーが存在しない場合にnil, nilを返す。
type KV interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Pruner は一定期間更新されていないスナップショットを削除できるストアが実装する。
type Pruner interface {
	PruneOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// Store はアプリケーションが保持するストレージ実装。
type Store interface {
	KV
	Ping(ctx context.Context) error
	Close() error
}

// ドライバ名
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
)

// Options はOpenに渡すストレージ設定。
type Options struct {
	Driver      string
	DatabaseURL string
	SQLitePath  string
	RedisURL    string
	// RedisTTL はRedisに保存するスナップショットの有効期限。0の場合は無期限。
	RedisTTL time.Duration
}

// Open はドライバ名に応じたStoreを生成し、疎通を確認して返す。
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)

	switch opts.Driver {
	case "", DriverMemory:
		return NewMemoryKV(), nil
	case DriverPostgres:
		s, err = OpenPostgres(opts.DatabaseURL)
	case DriverSQLite:
		s, err = OpenSQLite(opts.SQLitePath)
	case DriverRedis:
		s, err = OpenRedis(opts.RedisURL, opts.RedisTTL)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to connect to %s storage: %w", opts.Driver, err)
	}

	return s, nil
}
