package shared

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"
)

func migratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n)
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	return n == 1
}

func TestMigrations(t *testing.T) {
	t.Run("Embedded Scripts", func(t *testing.T) {
		migrations, err := Migrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		var names []string
		for i, m := range migrations {
			if i > 0 && m.Version <= migrations[i-1].Version {
				t.Errorf("migrations not sorted: %d after %d", m.Version, migrations[i-1].Version)
			}
			if m.Up == "" || m.Down == "" {
				t.Errorf("migration %d is missing a script", m.Version)
			}
			names = append(names, m.Name)
		}

		want := []string{"create_analyses", "create_analysis_results"}
		if !reflect.DeepEqual(names, want) {
			t.Errorf("expected migrations %v, got %v", want, names)
		}
	})

	t.Run("statements", func(t *testing.T) {
		script := "-- header\nCREATE TABLE a (id INT); -- trailing\n\n;\nINSERT INTO a VALUES (1);\n"
		got := statements(script)
		want := []string{"CREATE TABLE a (id INT)", "INSERT INTO a VALUES (1)"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %q, got %q", want, got)
		}
	})
}

func TestRunMigrations(t *testing.T) {
	t.Run("Creates Tables", func(t *testing.T) {
		db := migratedDB(t)

		for _, table := range []string{"analyses", "analyses_sequence", "analysis_results"} {
			if !tableExists(t, db, table) {
				t.Errorf("expected table %s after migrations", table)
			}
		}

		version, err := SchemaVersion(db)
		if err != nil {
			t.Fatalf("failed to read schema version: %v", err)
		}
		if version != 1 {
			t.Errorf("expected schema version 1, got %d", version)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		db := migratedDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		migrations, _ := Migrations()
		if count != len(migrations) {
			t.Errorf("expected %d applied migrations, got %d", len(migrations), count)
		}
	})
}

func TestRollbackMigration(t *testing.T) {
	t.Run("Reverts Latest", func(t *testing.T) {
		db := migratedDB(t)

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to roll back: %v", err)
		}
		if tableExists(t, db, "analysis_results") {
			t.Error("analysis_results should be dropped")
		}
		if !tableExists(t, db, "analyses") {
			t.Error("analyses should survive the first rollback")
		}
		if v, _ := SchemaVersion(db); v != 0 {
			t.Errorf("expected schema version 0, got %d", v)
		}
	})

	t.Run("Empty Database", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(1)

		if v, _ := SchemaVersion(db); v != -1 {
			t.Errorf("expected schema version -1, got %d", v)
		}
		if err := RollbackMigration(db); !errors.Is(err, ErrNoMigrations) {
			t.Errorf("expected ErrNoMigrations, got %v", err)
		}
	})
}

func TestResetSchema(t *testing.T) {
	db := migratedDB(t)

	if _, err := db.Exec("UPDATE analyses_sequence SET value = 7 WHERE id = 1"); err != nil {
		t.Fatalf("failed to seed sequence: %v", err)
	}

	if err := ResetSchema(db); err != nil {
		t.Fatalf("failed to reset schema: %v", err)
	}

	var value int
	if err := db.QueryRow("SELECT value FROM analyses_sequence WHERE id = 1").Scan(&value); err != nil {
		t.Fatalf("failed to read sequence: %v", err)
	}
	if value != 0 {
		t.Errorf("expected sequence reset to 0, got %d", value)
	}
}
