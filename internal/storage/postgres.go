package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/jobportal/internal/database"
)

// PostgresKV はstate_snapshotsテーブルを使うKV実装。
// テーブルはマイグレーション（migrateコマンド）で作成しておく必要がある。
type PostgresKV struct {
	db *sql.DB
}

var (
	_ Store  = (*PostgresKV)(nil)
	_ Pruner = (*PostgresKV)(nil)
)

// NewPostgresKV は既存のDB接続からPostgresKVを生成する。
func NewPostgresKV(db *sql.DB) *PostgresKV {
	return &PostgresKV{db: db}
}

// OpenPostgres は接続URLからPostgresKVを生成する。
func OpenPostgres(databaseURL string) (*PostgresKV, error) {
	db, err := database.Open(databaseURL)
	if err != nil {
		return nil, err
	}
	return NewPostgresKV(db), nil
}

// Load はスナップショットを取得する。
func (p *PostgresKV) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT data FROM state_snapshots WHERE snapshot_key = $1`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return data, nil
}

// Save はスナップショットをUPSERTする。
func (p *PostgresKV) Save(ctx context.Context, key string, data []byte) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO state_snapshots (snapshot_key, data, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (snapshot_key) DO UPDATE
		SET data = EXCLUDED.data, updated_at = now()
	`, key, data)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// PruneOlderThan はage以上更新されていないスナップショットを削除する。
func (p *PostgresKV) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	result, err := p.db.ExecContext(ctx,
		`DELETE FROM state_snapshots WHERE updated_at < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return result.RowsAffected()
}

// Ping はDB接続を確認する。
func (p *PostgresKV) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close はDB接続を閉じる。
func (p *PostgresKV) Close() error {
	return p.db.Close()
}
