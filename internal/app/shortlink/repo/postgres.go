package repo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"edgelink.local/internal/app/shortlink"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists records in the short_links table.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, code string) (*shortlink.Record, error) {
	dbctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	var rec shortlink.Record
	err := s.db.
		QueryRow(dbctx, "SELECT code,target,short_url,expires_at,ttl_seconds,created_at FROM short_links WHERE code=$1", code).
		Scan(&rec.Code, &rec.Target, &rec.ShortURL, &rec.ExpiresAt, &rec.TTLSeconds, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortlink.ErrRecordNotFound
		}
		slog.Error("short_links select failed", "code", code, "err", err)
		return nil, err
	}
	return &rec, nil
}

// Put relies on the primary key: ON CONFLICT DO NOTHING makes the conditional
// write atomic, so two racing allocations cannot both claim a code.
func (s *PostgresStore) Put(ctx context.Context, rec *shortlink.Record, opts shortlink.PutOptions) error {
	dbctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `INSERT INTO short_links (code,target,short_url,expires_at,ttl_seconds,created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (code) DO NOTHING`
	if opts.Overwrite {
		query = `INSERT INTO short_links (code,target,short_url,expires_at,ttl_seconds,created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (code) DO UPDATE SET target=EXCLUDED.target, short_url=EXCLUDED.short_url,
  expires_at=EXCLUDED.expires_at, ttl_seconds=EXCLUDED.ttl_seconds, created_at=EXCLUDED.created_at`
	}

	tag, err := s.db.Exec(dbctx, query, rec.Code, rec.Target, rec.ShortURL, rec.ExpiresAt, rec.TTLSeconds, rec.CreatedAt)
	if err != nil {
		slog.Error("short_links insert failed", "code", rec.Code, "err", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return shortlink.ErrCodeTaken
	}
	return nil
}

func (s *PostgresStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	dbctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := s.db.Exec(dbctx, "DELETE FROM short_links WHERE expires_at <= $1", now.Unix())
	if err != nil {
		slog.Error("short_links purge failed", "err", err)
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ScanLiveCodes streams every unexpired code to fn.
func (s *PostgresStore) ScanLiveCodes(ctx context.Context, now time.Time, fn func(code string)) error {
	rows, err := s.db.Query(ctx, "SELECT code FROM short_links WHERE expires_at > $1", now.Unix())
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return err
		}
		fn(code)
	}
	return rows.Err()
}
