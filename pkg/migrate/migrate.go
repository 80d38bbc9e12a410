// Package migrate applies versioned SQL schema migrations stored in an fs.FS.
package migrate

import (
	"database/sql"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
}

// Migrator handles the execution of migrations
type Migrator struct {
	db             *sql.DB
	fsys           fs.FS
	migrationTable string
}

// Format: 001_migration_name.up.sql
var upRegex = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// NewMigrator creates a migrator that reads *.up.sql files from the root of fsys
func NewMigrator(db *sql.DB, fsys fs.FS, migrationTable string) *Migrator {
	if migrationTable == "" {
		migrationTable = "schema_migrations"
	}
	return &Migrator{
		db:             db,
		fsys:           fsys,
		migrationTable: migrationTable,
	}
}

// Migrations loads and sorts every migration found in the filesystem
func (m *Migrator) Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matches := upRegex.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("invalid version number in file %s: %w", entry.Name(), err)
		}

		content, err := fs.ReadFile(m.fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.ReplaceAll(matches[2], "_", " "),
			Up:      string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// CurrentVersion returns the highest applied migration version, creating
// the tracking table if needed
func (m *Migrator) CurrentVersion() (int, error) {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`, m.migrationTable)
	if _, err := m.db.Exec(query); err != nil {
		return 0, fmt.Errorf("failed to create migration table: %w", err)
	}

	var version int
	err := m.db.QueryRow(fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s", m.migrationTable)).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}

	return version, nil
}

// Pending returns the migrations newer than the current version
func (m *Migrator) Pending() ([]Migration, error) {
	current, err := m.CurrentVersion()
	if err != nil {
		return nil, err
	}

	migrations, err := m.Migrations()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, migration := range migrations {
		if migration.Version > current {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// MigrateUp runs all pending migrations and returns the ones it applied
func (m *Migrator) MigrateUp() ([]Migration, error) {
	pending, err := m.Pending()
	if err != nil {
		return nil, err
	}

	var applied []Migration
	for _, migration := range pending {
		if err := m.apply(migration); err != nil {
			return applied, fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
		applied = append(applied, migration)
	}

	return applied, nil
}

func (m *Migrator) apply(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(migration.Up); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)", m.migrationTable)
	if _, err := tx.Exec(query, migration.Version); err != nil {
		return fmt.Errorf("failed to update migration version: %w", err)
	}

	return tx.Commit()
}
