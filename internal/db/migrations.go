// Package db owns the Postgres schema.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type migration struct {
	version int
	sql     string
}

// migrations must stay sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS leads (
	id                   TEXT PRIMARY KEY,
	short_id             TEXT NOT NULL,
	name                 TEXT NOT NULL,
	address              TEXT NOT NULL,
	service_type         TEXT NOT NULL CHECK (service_type IN ('website', 'aplikasi', 'uiux')),
	phone_number         TEXT,
	project_description  TEXT,
	features             TEXT,
	budget               TEXT,
	ai_analysis          TEXT,
	submitted_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	processed            BOOLEAN NOT NULL DEFAULT FALSE,
	converted_project_id TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_leads_short_id ON leads(short_id);
CREATE INDEX IF NOT EXISTS idx_leads_submitted_at ON leads(submitted_at DESC);

CREATE TABLE IF NOT EXISTS projects (
	id                   TEXT PRIMARY KEY,
	short_id             TEXT NOT NULL,
	client_name          TEXT NOT NULL,
	project_name         TEXT NOT NULL,
	description          TEXT,
	status               TEXT NOT NULL DEFAULT 'Diskusi'
		CHECK (status IN ('Diskusi', 'Desain', 'Development', 'Test', 'Selesai')),
	estimated_completion DATE,
	client_phone         TEXT,
	lead_id              TEXT REFERENCES leads(id) ON DELETE SET NULL,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_short_id ON projects(short_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_lead_id ON projects(lead_id) WHERE lead_id IS NOT NULL;

CREATE TABLE IF NOT EXISTS project_milestones (
	id           TEXT PRIMARY KEY,
	project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	description  TEXT,
	status       TEXT NOT NULL DEFAULT 'Diskusi',
	due_date     DATE,
	completed_at TIMESTAMPTZ,
	order_index  INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_milestones_project_order ON project_milestones(project_id, order_index);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS notification_attempts (
	id         BIGSERIAL PRIMARY KEY,
	lead_id    TEXT,
	project_id TEXT,
	audience   TEXT NOT NULL CHECK (audience IN ('business', 'client')),
	provider   TEXT NOT NULL,
	to_number  TEXT NOT NULL,
	status     TEXT NOT NULL CHECK (status IN ('sent', 'failed', 'queued')),
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notification_attempts_lead ON notification_attempts(lead_id, created_at);
CREATE INDEX IF NOT EXISTS idx_notification_attempts_project ON notification_attempts(project_id, created_at);

CREATE TABLE IF NOT EXISTS outbox_events (
	id             BIGSERIAL PRIMARY KEY,
	aggregate_type TEXT NOT NULL,
	aggregate_id   TEXT,
	routing_key    TEXT NOT NULL,
	payload        JSONB NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	retry_count    INTEGER NOT NULL DEFAULT 0,
	next_retry_at  TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox_events(status, next_retry_at, created_at);
`,
	},
}

// Migrate applies every migration newer than the recorded schema version.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	if err := pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(ctx, pool, m); err != nil {
			return err
		}
		logger.Info("Applied schema migration", zap.Int("version", m.version))
	}
	return nil
}

func apply(ctx context.Context, pool *pgxpool.Pool, m migration) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning migration v%d: %w", m.version, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, m.sql); err != nil {
		return fmt.Errorf("applying migration v%d: %w", m.version, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_version (version) VALUES ($1)`, m.version); err != nil {
		return fmt.Errorf("recording migration v%d: %w", m.version, err)
	}
	return tx.Commit(ctx)
}
