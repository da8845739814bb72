package db

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/rsclarke/darkdork/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenCreatesDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestMigrationsApplied(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	tables := []string{"schema_migrations", "projects", "searches", "results", "tags", "search_tags", "analytics", "findings", "exports"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer func() { _ = db.Close() }()

	var fkEnabled int
	err = db.QueryRow("PRAGMA foreign_keys").Scan(&fkEnabled)
	if err != nil {
		t.Fatalf("PRAGMA foreign_keys failed: %v", err)
	}
	if fkEnabled != 1 {
		t.Error("foreign keys not enabled")
	}
}

func TestCascadeDelete(t *testing.T) {
	db := openTestDB(t)

	searchID, err := CreateSearch(db, models.Search{DorkQuery: "inurl:admin", ExecutedAt: 1234567890})
	if err != nil {
		t.Fatalf("create search: %v", err)
	}

	resultID, err := CreateResult(db, models.Result{SearchID: searchID, URL: "https://example.com/admin", FoundAt: 1234567890})
	if err != nil {
		t.Fatalf("create result: %v", err)
	}

	if _, err := CreateFinding(db, models.Finding{ResultID: resultID, Title: "Admin panel", Severity: models.SeverityMedium, ReportedAt: 1234567890}); err != nil {
		t.Fatalf("create finding: %v", err)
	}

	_, err = db.Exec("DELETE FROM searches WHERE id=?", searchID)
	if err != nil {
		t.Fatalf("delete search: %v", err)
	}

	for _, table := range []string{"results", "findings"} {
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Errorf("expected 0 %s after cascade delete, got %d", table, count)
		}
	}
}

func TestForeignKeyViolationSurfaced(t *testing.T) {
	db := openTestDB(t)

	missing := int64(42)
	if _, err := CreateSearch(db, models.Search{ProjectID: &missing, DorkQuery: "filetype:pdf", ExecutedAt: 1}); err == nil {
		t.Error("expected foreign key error for unknown project")
	}
	if _, err := CreateResult(db, models.Result{SearchID: 42, URL: "https://example.com", FoundAt: 1}); err == nil {
		t.Error("expected foreign key error for unknown search")
	}
	if _, err := CreateFinding(db, models.Finding{ResultID: 42, Title: "x", Severity: models.SeverityLow, ReportedAt: 1}); err == nil {
		t.Error("expected foreign key error for unknown result")
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	first, err := Open(dbPath)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	if _, err := CreateProject(first, models.Project{Name: "keep me"}); err != nil {
		t.Fatalf("create project: %v", err)
	}
	_ = first.Close()

	second, err := Open(dbPath)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer func() { _ = second.Close() }()

	n, err := CountRows(second, "projects")
	if err != nil {
		t.Fatalf("count projects: %v", err)
	}
	if n != 1 {
		t.Errorf("expected project to survive reopen, got %d rows", n)
	}
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     int
		wantErr  bool
	}{
		{"valid", "001_create_tables.sql", 1, false},
		{"valid large", "123_add_column.sql", 123, false},
		{"missing underscore", "001.sql", 0, true},
		{"empty prefix", "_create_tables.sql", 0, true},
		{"non-numeric prefix", "abc_create_tables.sql", 0, true},
		{"empty string", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVersion(tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseVersion(%q) error = %v, wantErr %v", tt.filename, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("parseVersion(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}
