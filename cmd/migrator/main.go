package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var databaseURL, migrationsPath, migrationsTable string
	var down bool

	flag.StringVar(&databaseURL, "database-url", "", "database url (defaults to DATABASE_URL)")
	flag.StringVar(&migrationsPath, "migrations-path", "./migrations", "migrations root, one subdirectory per database")
	flag.StringVar(&migrationsTable, "migrations-table", "schema_migrations", "migrations table name")
	flag.BoolVar(&down, "down", false, "run down migrations")

	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		panic("database url is empty")
	}

	if migrationsPath == "" {
		panic("migrations path is empty")
	}

	dir, err := migrationsDir(migrationsPath, databaseURL)
	if err != nil {
		panic(err)
	}

	m, err := migrate.New(
		"file://"+dir,
		migrationURL(databaseURL, migrationsTable),
	)
	if err != nil {
		panic(err)
	}

	defer m.Close()

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		panic(err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("no migrations to apply")
		return
	}

	direction := "up"
	if down {
		direction = "down"
	}
	fmt.Printf("migrations applied (%s)\n", direction)
}

// migrationsDir picks the schema variant for the database behind
// databaseURL. Column types differ per database, so each keeps its own files.
func migrationsDir(root, databaseURL string) (string, error) {
	var dialect string
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		dialect = "postgres"
	case strings.HasPrefix(databaseURL, "mysql://"):
		dialect = "mysql"
	case strings.HasPrefix(databaseURL, "sqlite://"), strings.HasPrefix(databaseURL, "file:"):
		dialect = "sqlite"
	default:
		return "", fmt.Errorf("unsupported database url scheme: %q", databaseURL)
	}

	return filepath.Join(root, dialect), nil
}

// migrationURL rewrites the service's database url into the form
// golang-migrate expects and names the migrations table.
func migrationURL(databaseURL, table string) string {
	u := databaseURL
	switch {
	case strings.HasPrefix(u, "sqlite://"):
		u = "sqlite3://" + strings.TrimPrefix(u, "sqlite://")
	case strings.HasPrefix(u, "file:"):
		u = "sqlite3://" + strings.TrimPrefix(u, "file:")
	}

	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + "x-migrations-table=" + table
}
