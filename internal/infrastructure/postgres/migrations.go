package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/architeacher/device-inventory/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsDir = "migrations"

	// Filenames look like YYYYMMDD_HHMMSS_description.up.sql.
	migrationFilenameParts = 3
	minVersionParts        = 2

	createMigrationsTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectAppliedSQL = `SELECT version FROM schema_migrations ORDER BY version`
	recordSQL        = `INSERT INTO schema_migrations (version) VALUES ($1)`
)

type (
	// MigrationConn is the subset of pgxpool.Pool the migrator needs.
	MigrationConn interface {
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		Begin(ctx context.Context) (pgx.Tx, error)
	}

	Migration struct {
		Version string
		Name    string
		UpSQL   string
		DownSQL string
	}

	Migrator struct {
		conn   MigrationConn
		source fs.FS
		logger logger.Logger
	}
)

func NewMigrator(conn MigrationConn, log logger.Logger) *Migrator {
	source, _ := fs.Sub(migrationsFS, migrationsDir)

	return &Migrator{
		conn:   conn,
		source: source,
		logger: log.Component("migrator"),
	}
}

// Migrate applies pending migrations oldest first, each in its own
// transaction. A failing migration is rolled back and stops the run.
func (m *Migrator) Migrate(ctx context.Context) error {
	if _, err := m.conn.Exec(ctx, createMigrationsTableSQL); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	migrations, err := LoadMigrations(m.source)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}

		if err := m.apply(ctx, migration); err != nil {
			return fmt.Errorf("applying migration %s (%s): %w", migration.Version, migration.Name, err)
		}

		m.logger.Info().
			Str("version", migration.Version).
			Str("name", migration.Name).
			Msg("migration applied")
	}

	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.conn.Query(ctx, selectAppliedSQL)
	if err != nil {
		return nil, fmt.Errorf("querying migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)

	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}

		applied[version] = true
	}

	return applied, rows.Err()
}

func (m *Migrator) apply(ctx context.Context, migration Migration) error {
	tx, err := m.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, migration.UpSQL); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}

	if _, err := tx.Exec(ctx, recordSQL, migration.Version); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}

	return nil
}

// LoadMigrations reads paired up/down files from source, sorted by version.
func LoadMigrations(source fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string]*Migration)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		version, name, isUp, ok := parseMigrationFilename(entry.Name())
		if !ok {
			continue
		}

		content, err := fs.ReadFile(source, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}

		migration, exists := byVersion[version]
		if !exists {
			migration = &Migration{Version: version, Name: name}
			byVersion[version] = migration
		}

		if isUp {
			migration.UpSQL = string(content)
		} else {
			migration.DownSQL = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))

	for version, migration := range byVersion {
		if migration.UpSQL == "" {
			return nil, fmt.Errorf("migration %s has no up SQL", version)
		}

		migrations = append(migrations, *migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func parseMigrationFilename(filename string) (version, name string, isUp, ok bool) {
	base, found := strings.CutSuffix(filename, ".sql")
	if !found {
		return "", "", false, false
	}

	switch {
	case strings.HasSuffix(base, ".up"):
		isUp = true
		base = strings.TrimSuffix(base, ".up")
	case strings.HasSuffix(base, ".down"):
		base = strings.TrimSuffix(base, ".down")
	default:
		return "", "", false, false
	}

	parts := strings.SplitN(base, "_", migrationFilenameParts)
	if len(parts) < minVersionParts {
		return "", "", false, false
	}

	version = parts[0] + "_" + parts[1]
	if len(parts) == migrationFilenameParts {
		name = parts[2]
	}

	return version, name, isUp, true
}
