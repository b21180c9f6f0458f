package database

import (
	"path/filepath"
	"testing"
)

// TestDatabaseIntegration tests the database lifecycle against SQLite
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_integration.db")

	db, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	// Tables created by migrations
	tables := []string{"accounts", "teacher_learners", "parent_children", "lessons", "lesson_assignments", "help_requests", "sessions"}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		if err := db.QueryRow(query, table).Scan(&name); err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

// TestMigrationsAreIdempotent verifies re-running migrations is a no-op
func TestMigrationsAreIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_idempotent.db")

	db, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	migrations := filepath.Join("..", "..", "migrations")
	if err := db.RunMigrations(migrations); err != nil {
		t.Fatalf("First migration run failed: %v", err)
	}
	if err := db.RunMigrations(migrations); err != nil {
		t.Fatalf("Second migration run failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Errorf("migrations recorded = %d, want 1", count)
	}
}

// TestExecReturningID verifies insert IDs come back through the dialect layer
func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbPath := filepath.Join(t.TempDir(), "test_ids.db")

	db, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	first, err := db.ExecReturningID(
		"INSERT INTO accounts (name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)",
		"Alex", "alex@example.com", "hash", "teacher", "2026-01-01T00:00:00Z",
	)
	if err != nil {
		t.Fatalf("ExecReturningID() error = %v", err)
	}
	second, err := db.ExecReturningID(
		"INSERT INTO accounts (name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)",
		"Briar", "briar@example.com", "hash", "learner", "2026-01-01T00:00:00Z",
	)
	if err != nil {
		t.Fatalf("ExecReturningID() error = %v", err)
	}

	if first <= 0 || second != first+1 {
		t.Errorf("unexpected IDs: first=%d second=%d", first, second)
	}
}
