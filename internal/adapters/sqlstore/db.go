// Package sqlstore persiste le catalogue dans SQLite (modernc) ou Postgres (lib/pq).
package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DB struct {
	SQL    *sqlx.DB
	Driver string
	// Builder produit des requêtes avec le format de placeholder du driver.
	Builder sq.StatementBuilderType
}

func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var placeholder sq.PlaceholderFormat
	switch driver {
	case DriverSQLite:
		placeholder = sq.Question
	case DriverPostgres:
		placeholder = sq.Dollar
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// Une seule connexion: ":memory:" reste la même base, et SQLite
		// sérialise les écritures de toute façon.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}

	ctxPing, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctxPing); err != nil {
		_ = db.Close()
		return nil, err
	}

	wrapper := &DB{
		SQL:     db,
		Driver:  driver,
		Builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
	}
	if err := wrapper.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return wrapper, nil
}

func (d *DB) Close() error {
	return d.SQL.Close()
}

// Migrate applique, dans l'ordre, les sections "-- +migrate Up" des
// migrations embarquées qui ne sont pas encore dans schema_migrations.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.SQL.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY, applied_at TEXT NOT NULL)`); err != nil {
		return err
	}

	applied, err := d.appliedVersions(ctx)
	if err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}

	versions := make([]int, 0, len(entries))
	byVersion := map[int]string{}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		v, err := strconv.Atoi(strings.SplitN(name, "_", 2)[0])
		if err != nil {
			return fmt.Errorf("invalid migration name: %s", name)
		}
		versions = append(versions, v)
		byVersion[v] = name
	}
	sort.Ints(versions)

	for _, v := range versions {
		if applied[v] {
			continue
		}
		b, err := migrationsFS.ReadFile("migrations/" + byVersion[v])
		if err != nil {
			return err
		}
		if err := d.applyMigration(ctx, v, byVersion[v], extractUp(string(b))); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) applyMigration(ctx context.Context, version int, name, upSQL string) error {
	if strings.TrimSpace(upSQL) == "" {
		return nil
	}
	tx, err := d.SQL.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, upSQL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %s failed: %w", name, err)
	}
	query, args, err := d.Builder.Insert("schema_migrations").
		Columns("version", "applied_at").
		Values(version, time.Now().UTC().Format(time.RFC3339)).
		ToSql()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (d *DB) appliedVersions(ctx context.Context) (map[int]bool, error) {
	var versions []int
	if err := d.SQL.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations`); err != nil {
		return nil, err
	}
	out := make(map[int]bool, len(versions))
	for _, v := range versions {
		out[v] = true
	}
	return out, nil
}

func extractUp(sqlText string) string {
	var out []string
	inUp := false
	for _, line := range strings.Split(sqlText, "\n") {
		trim := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trim, "-- +migrate Up"):
			inUp = true
		case strings.HasPrefix(trim, "-- +migrate Down"):
			inUp = false
		case inUp:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
