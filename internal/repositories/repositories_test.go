package repositories

import (
	"database/sql"
	"testing"

	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// every pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func newTestAnalysis(taskID, database string) *models.Analysis {
	return models.NewAnalysis(taskID, models.AnalysisRequest{
		DBType:   "mysql",
		Host:     "localhost",
		Port:     "3306",
		Database: database,
		Schema:   "public",
	})
}

func testResult() *models.Result {
	return &models.Result{
		Stats:      models.Stats{Tables: 5, Relations: 3, EnumTables: 1},
		DictMD:     "# D",
		ERMermaid:  "erDiagram",
		SchemaJSON: `{"a":1}`,
	}
}

func TestNextSequence(t *testing.T) {
	t.Run("Increments", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		for want := 1; want <= 3; want++ {
			got, err := NextSequence(db, "analyses")
			if err != nil {
				t.Fatalf("failed to get next sequence: %v", err)
			}
			if got != want {
				t.Errorf("expected sequence %d, got %d", want, got)
			}
		}
	})

	t.Run("Rolled Back Transaction", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		tx, err := db.Begin()
		if err != nil {
			t.Fatalf("failed to begin transaction: %v", err)
		}
		if _, err := NextSequence(tx, "analyses"); err != nil {
			t.Fatalf("failed to get next sequence: %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Fatalf("failed to roll back: %v", err)
		}

		got, err := NextSequence(db, "analyses")
		if err != nil {
			t.Fatalf("failed to get next sequence: %v", err)
		}
		if got != 1 {
			t.Errorf("expected rolled back number to be reused, got %d", got)
		}
	})

	t.Run("Unknown Table", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if _, err := NextSequence(db, "missing"); err == nil {
			t.Error("expected error for table without a sequence")
		}
	})
}

func TestAnalysisRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)
		analysis := newTestAnalysis("T1", "shop")

		if err := repo.Create(analysis); err != nil {
			t.Fatalf("failed to create analysis: %v", err)
		}

		if analysis.ID() == "" {
			t.Error("analysis ID should be set after creation")
		}
		if analysis.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", analysis.Sequence())
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)
		analysis := newTestAnalysis("T1", "shop")

		if err := repo.Create(analysis); err != nil {
			t.Fatalf("failed to create analysis: %v", err)
		}

		retrieved, err := repo.Get(analysis.ID())
		if err != nil {
			t.Fatalf("failed to get analysis: %v", err)
		}

		if retrieved.TaskID() != "T1" || retrieved.Database() != "shop" || retrieved.Schema() != "public" {
			t.Errorf("unexpected analysis fields: task=%s database=%s schema=%s", retrieved.TaskID(), retrieved.Database(), retrieved.Schema())
		}
		if retrieved.Status() != models.StatusPending {
			t.Errorf("expected pending status, got %s", retrieved.Status())
		}
		if retrieved.Result() != nil {
			t.Error("expected no result before completion")
		}
	})

	t.Run("GetByTaskID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)
		first := newTestAnalysis("T1", "shop")
		second := newTestAnalysis("T1", "shop")

		for _, a := range []*models.Analysis{first, second} {
			if err := repo.Create(a); err != nil {
				t.Fatalf("failed to create analysis: %v", err)
			}
		}

		retrieved, err := repo.GetByTaskID("T1")
		if err != nil {
			t.Fatalf("failed to get analysis by task id: %v", err)
		}
		if retrieved.ID() != second.ID() {
			t.Errorf("expected latest analysis %s, got %s", second.ID(), retrieved.ID())
		}
	})

	t.Run("Update With Result", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)
		analysis := newTestAnalysis("T1", "shop")

		if err := repo.Create(analysis); err != nil {
			t.Fatalf("failed to create analysis: %v", err)
		}

		analysis.Settle(models.StatusCompleted, 100, "Analysis complete", testResult())
		if err := repo.Update(analysis); err != nil {
			t.Fatalf("failed to update analysis: %v", err)
		}

		retrieved, err := repo.Get(analysis.ID())
		if err != nil {
			t.Fatalf("failed to get analysis: %v", err)
		}

		if retrieved.Status() != models.StatusCompleted || retrieved.Progress() != 100 {
			t.Errorf("expected completed at 100, got %s at %d", retrieved.Status(), retrieved.Progress())
		}
		if retrieved.CompletedAt() == nil {
			t.Error("expected completed_at to be set")
		}
		if retrieved.Result() == nil {
			t.Fatal("expected result to be stored")
		}
		if *retrieved.Result() != *testResult() {
			t.Errorf("expected %+v, got %+v", testResult(), retrieved.Result())
		}

		// Settling again replaces the stored result.
		updated := testResult()
		updated.Stats.Tables = 6
		analysis.Settle(models.StatusCompleted, 100, "", updated)
		if err := repo.Update(analysis); err != nil {
			t.Fatalf("failed to update analysis: %v", err)
		}
		retrieved, _ = repo.Get(analysis.ID())
		if retrieved.Result().Stats.Tables != 6 {
			t.Errorf("expected result to be replaced, got %+v", retrieved.Result().Stats)
		}
	})

	t.Run("Create With Result", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)
		analysis := newTestAnalysis("T1", "shop")
		analysis.Settle(models.StatusCompleted, 100, "", testResult())

		if err := repo.Create(analysis); err != nil {
			t.Fatalf("failed to create analysis: %v", err)
		}

		retrieved, err := repo.GetByTaskID("T1")
		if err != nil {
			t.Fatalf("failed to get analysis: %v", err)
		}
		if retrieved.Result() == nil || retrieved.Result().Stats.String() != "5/3/1" {
			t.Errorf("expected stored result, got %+v", retrieved.Result())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)
		analysis := newTestAnalysis("T1", "shop")

		if err := repo.Create(analysis); err != nil {
			t.Fatalf("failed to create analysis: %v", err)
		}

		if err := repo.Delete(analysis.ID()); err != nil {
			t.Fatalf("failed to delete analysis: %v", err)
		}

		if _, err := repo.Get(analysis.ID()); err == nil {
			t.Error("expected error when getting deleted analysis")
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAnalysisRepository(db)

		analyses := []*models.Analysis{
			newTestAnalysis("T1", "shop"),
			newTestAnalysis("T2", "crm"),
			newTestAnalysis("T3", "shop"),
		}
		analyses[1].Settle(models.StatusFailed, 10, "access denied", nil)

		for _, a := range analyses {
			if err := repo.Create(a); err != nil {
				t.Fatalf("failed to create analysis: %v", err)
			}
		}

		all, err := repo.List(map[string]any{})
		if err != nil {
			t.Fatalf("failed to list analyses: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 analyses, got %d", len(all))
		}
		if all[0].TaskID() != "T3" {
			t.Errorf("expected newest first, got %s", all[0].TaskID())
		}

		tests := []struct {
			name     string
			criteria map[string]any
			want     int
		}{
			{name: "by database", criteria: map[string]any{"database": "shop"}, want: 2},
			{name: "by status", criteria: map[string]any{"status": "failed"}, want: 1},
			{name: "by db type", criteria: map[string]any{"db_type": "sqlserver"}, want: 0},
			{name: "with limit", criteria: map[string]any{"limit": 2}, want: 2},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				filtered, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list filtered analyses: %v", err)
				}
				if len(filtered) != tt.want {
					t.Errorf("expected %d analyses, got %d", tt.want, len(filtered))
				}
			})
		}
	})
}
