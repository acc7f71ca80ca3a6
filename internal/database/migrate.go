package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
)

// RunMigrations executes the .up.sql files from the migrations directory in
// lexical order. Files are expected to be idempotent (CREATE TABLE IF NOT
// EXISTS style), so repeated startup runs are safe.
func RunMigrations(db *sqlx.DB, migrationsPath string) error {
	entries, err := os.ReadDir(migrationsPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}

	for _, name := range files {
		contents, err := os.ReadFile(filepath.Join(migrationsPath, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		// MySQL driver executes one statement per call
		for _, stmt := range strings.Split(string(contents), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
		}
	}

	return nil
}
