package testutil

import (
	"database/sql"
	"io/fs"
	"sort"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/pratik-mahalle/docbrief/migrations"
)

// NewTestDB creates an in-memory SQLite database with the embedded schema applied
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	files, err := fs.Glob(migrations.GetFS(), "*.sql")
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	sort.Strings(files)

	for _, name := range files {
		schema, err := fs.ReadFile(migrations.GetFS(), name)
		if err != nil {
			t.Fatalf("Failed to read migration %s: %v", name, err)
		}
		if _, err := db.Exec(string(schema)); err != nil {
			t.Fatalf("Failed to apply migration %s: %v", name, err)
		}
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// SeedUser inserts a user row, optionally with a billing customer
func SeedUser(t *testing.T, db *sql.DB, id, email, customerID string) {
	t.Helper()

	var customer interface{}
	if customerID != "" {
		customer = customerID
	}
	_, err := db.Exec(
		`INSERT INTO users (id, email, name, stripe_customer_id, created_at, updated_at) VALUES ($1, $2, NULL, $3, 1, 1)`,
		id, email, customer,
	)
	if err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
}
