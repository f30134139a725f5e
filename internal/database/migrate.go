package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies the embedded schema for the connection's dialect. Every
// statement is idempotent, so running it on each deploy is safe.
func Migrate(ctx context.Context, db *sqlx.DB) (int, error) {
	dir := path.Join("migrations", dialect(db))

	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return 0, fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	applied := 0
	for _, name := range names {
		raw, err := migrations.ReadFile(path.Join(dir, name))
		if err != nil {
			return applied, err
		}
		for _, stmt := range splitStatements(string(raw)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return applied, fmt.Errorf("%s: %w", name, err)
			}
		}
		applied++
	}
	return applied, nil
}

func dialect(db *sqlx.DB) string {
	if db.DriverName() == "mysql" {
		return DriverMySQL
	}
	return DriverPostgres
}

func splitStatements(script string) []string {
	var out []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
