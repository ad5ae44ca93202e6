package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

type SQLProvider struct {
	db     *sqlx.DB
	driver string

	logger *slog.Logger
}

func NewSQLProvider(driverName string, dataSource string, logger *slog.Logger) (*SQLProvider, error) {
	db, err := sqlx.Open(driverName, dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driverName, err)
	}

	return &SQLProvider{
		db:     db,
		driver: driverName,
		logger: logger.With("component", "storage", "driver", driverName),
	}, nil
}

func (p *SQLProvider) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// GetSchemaVersion returns the version recorded by the last migration, or 0
// for an empty database.
func (p *SQLProvider) GetSchemaVersion(ctx context.Context) (int, error) {
	var exists int
	err := p.db.GetContext(ctx, &exists,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_migrations'`)
	if err != nil {
		return -1, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	err = p.db.GetContext(ctx, &version,
		`SELECT version_after FROM schema_migrations ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return -1, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// Migrate moves the schema to target, up or down. LatestVersion selects the
// newest embedded migration.
func (p *SQLProvider) Migrate(ctx context.Context, target int) error {
	current, err := p.GetSchemaVersion(ctx)
	if err != nil {
		return err
	}

	runner := NewMigrationRunner(p.driver, p.logger)
	migrations, err := runner.LoadMigrations(current, target)
	if errors.Is(err, ErrMigrateCurrentVersionSameAsTarget) {
		p.logger.Debug("Schema is up to date", "version", current)
		return nil
	}
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if err := p.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %04d_%s failed: %w", m.Version, m.Name, err)
		}
		p.logger.Info("Applied migration", "version", m.Version, "name", m.Name, "up", m.Up)
	}
	return nil
}

func (p *SQLProvider) applyMigration(ctx context.Context, m SchemaMigration) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version_before, version_after, applied_at) VALUES (?, ?, ?)`,
		m.Before(), m.After(), time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

func (p *SQLProvider) ListCookies(ctx context.Context, host string) ([]Cookie, error) {
	var cookies []Cookie
	err := p.db.SelectContext(ctx, &cookies,
		`SELECT id, host, name, value, path, domain, secure, http_only, same_site, expires_at, created_at
		FROM cookies WHERE host = ? ORDER BY id`, host)
	if err != nil {
		return nil, fmt.Errorf("failed to list cookies: %w", err)
	}
	return cookies, nil
}

// SaveCookie inserts the cookie or replaces the one with the same host, name and path.
func (p *SQLProvider) SaveCookie(ctx context.Context, c Cookie) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.CreatedAt = c.CreatedAt.UTC()
	if c.ExpiresAt != nil {
		exp := c.ExpiresAt.UTC().Truncate(time.Second)
		c.ExpiresAt = &exp
	}

	_, err := p.db.NamedExecContext(ctx, `
		INSERT INTO cookies (host, name, value, path, domain, secure, http_only, same_site, expires_at, created_at)
		VALUES (:host, :name, :value, :path, :domain, :secure, :http_only, :same_site, :expires_at, :created_at)
		ON CONFLICT (host, name, path) DO UPDATE SET
			value = excluded.value,
			domain = excluded.domain,
			secure = excluded.secure,
			http_only = excluded.http_only,
			same_site = excluded.same_site,
			expires_at = excluded.expires_at`, c)
	if err != nil {
		return fmt.Errorf("failed to save cookie: %w", err)
	}
	return nil
}

func (p *SQLProvider) DeleteCookie(ctx context.Context, host, name, path string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM cookies WHERE host = ? AND name = ? AND path = ?`, host, name, path)
	if err != nil {
		return fmt.Errorf("failed to delete cookie: %w", err)
	}
	return nil
}

func (p *SQLProvider) DeleteHostCookies(ctx context.Context, host string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM cookies WHERE host = ?`, host)
	if err != nil {
		return fmt.Errorf("failed to delete cookies: %w", err)
	}
	return nil
}

// ExpireCookies removes cookies whose expiry is at or before now and returns how many.
func (p *SQLProvider) ExpireCookies(ctx context.Context, now time.Time) (int64, error) {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM cookies WHERE expires_at IS NOT NULL AND expires_at <= ?`, now.UTC().Truncate(time.Second))
	if err != nil {
		return 0, fmt.Errorf("failed to expire cookies: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		p.logger.Debug("Pruned expired cookies", "count", n)
	}
	return n, nil
}
