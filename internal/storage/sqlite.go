package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS state_snapshots (
	snapshot_key TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_state_snapshots_updated_at ON state_snapshots (updated_at);
`

// SQLiteKV はSQLiteファイルに保存するKV実装。
// 単一プロセスでの運用を想定している。
type SQLiteKV struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ Store  = (*SQLiteKV)(nil)
	_ Pruner = (*SQLiteKV)(nil)
)

// OpenSQLite はSQLiteファイルを開き、テーブルがなければ作成する。
func OpenSQLite(path string) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// modernc sqliteは同一DBへの並行書き込みでSQLITE_BUSYになるため接続を1本に絞る
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sqlite schema: %w", err)
	}
	return &SQLiteKV{db: db, now: time.Now}, nil
}

// Load はスナップショットを取得する。
func (s *SQLiteKV) Load(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM state_snapshots WHERE snapshot_key = ?`, key,
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
func (s *SQLiteKV) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO state_snapshots (snapshot_key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(snapshot_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, key, data, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// PruneOlderThan はage以上更新されていないスナップショットを削除する。
func (s *SQLiteKV) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := s.now().Add(-age).UnixMilli()
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM state_snapshots WHERE updated_at < ?`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return result.RowsAffected()
}

// Ping はDB接続を確認する。
func (s *SQLiteKV) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close はDBを閉じる。
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
