package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteKV 单机文件 KV 实现：进程崩溃/重启后数据仍在，是离线模式的最终兜底。
// ttl 为 0 表示永不过期；过期判定在读路径上做，不依赖后台清理。
type SqliteKV struct {
	db *sql.DB
}

// NewSqliteKV 打开（或创建）缓存文件并建表
func NewSqliteKV(path string) (*SqliteKV, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			expires_at INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache schema: %w", err)
	}
	return &SqliteKV{db: db}, nil
}

var _ KV = (*SqliteKV)(nil)

func (s *SqliteKV) Get(ctx context.Context, key string) (string, error) {
	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM kv WHERE key = ?`, key,
	).Scan(&value, &expiresAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", ErrMiss
		}
		return "", fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if expiresAt > 0 && time.Now().Unix() >= expiresAt {
		return "", ErrMiss
	}
	return value, nil
}

func (s *SqliteKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	now := time.Now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, expires_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value,
		                                expires_at = excluded.expires_at,
		                                updated_at = excluded.updated_at`,
		key, value, expiresAt, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (s *SqliteKV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache key %s: %w", key, err)
	}
	return nil
}

// Close 关闭缓存文件
func (s *SqliteKV) Close() error {
	return s.db.Close()
}
