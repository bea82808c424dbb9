package audit

import (
	"context"
	"log/slog"

	"edgelink.local/internal/app/shortlink"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sink persists a batch of events.
type Sink interface {
	Write(ctx context.Context, batch []shortlink.LinkCreated) error
}

// PostgresSink appends rows to link_audit in one transaction per batch.
type PostgresSink struct {
	db *pgxpool.Pool
}

func NewPostgresSink(db *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Write(ctx context.Context, batch []shortlink.LinkCreated) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(context.Background())

	for _, e := range batch {
		if _, err := tx.Exec(ctx,
			`INSERT INTO link_audit (code,target,expires_at,ttl_seconds,alias,created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
			e.Code, e.Target, e.ExpiresAt, e.TTLSeconds, e.Alias, e.CreatedAt); err != nil {
			slog.Error("audit: insert failed", "code", e.Code, "err", err)
			return err
		}
	}
	return tx.Commit(ctx)
}

// LogSink writes events to the structured log; used when no database is configured.
type LogSink struct{}

func (LogSink) Write(_ context.Context, batch []shortlink.LinkCreated) error {
	for _, e := range batch {
		slog.Info("link created",
			"code", e.Code,
			"target", e.Target,
			"expires_at", e.ExpiresAt,
			"alias", e.Alias)
	}
	return nil
}
