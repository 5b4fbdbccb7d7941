package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
)

var _ models.HistoryStore = (*AnalysisRepository)(nil)

// AnalysisRepository is the SQLite [models.HistoryStore].
//
// Results of completed analyses live in analysis_results, keyed by analysis id.
type AnalysisRepository struct {
	db *sql.DB
}

// NewAnalysisRepository creates a new AnalysisRepository with the given database connection
func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const selectAnalysis = `
	SELECT
		a.id, a.sequence, a.task_id, a.db_type, a.host, a.database_name,
		a.schema_name, a.status, a.progress, a.message, a.created_at,
		a.updated_at, a.completed_at, a.deleted_at,
		r.tables_count, r.relations_count, r.enum_tables_count,
		r.dict_md, r.er_mermaid, r.schema_json
	FROM analyses a
	LEFT JOIN analysis_results r ON r.analysis_id = a.id
`

// Create inserts a new analysis, and its result when present, with generated ID and sequence
func (r *AnalysisRepository) Create(analysis *models.Analysis) error {
	if err := analysis.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequence, err := NextSequence(tx, "analyses")
	if err != nil {
		return err
	}

	analysis.SetID(shared.GenerateID())
	analysis.SetSequence(sequence)

	query := `
		INSERT INTO analyses (
			id, sequence, task_id, db_type, host, database_name, schema_name,
			status, progress, message, created_at, updated_at, completed_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		analysis.ID(),
		analysis.Sequence(),
		analysis.TaskID(),
		analysis.DBType(),
		analysis.Host(),
		analysis.Database(),
		nullString(analysis.Schema()),
		string(analysis.Status()),
		analysis.Progress(),
		nullString(analysis.Message()),
		analysis.CreatedAt(),
		analysis.UpdatedAt(),
		analysis.CompletedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	if err := saveResult(tx, analysis); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}
	return nil
}

// Get retrieves an analysis by ID, excluding soft-deleted analyses
func (r *AnalysisRepository) Get(id string) (*models.Analysis, error) {
	row := r.db.QueryRow(selectAnalysis+" WHERE a.id = ? AND a.deleted_at IS NULL", id)
	return scanAnalysis(row, id)
}

// GetByTaskID retrieves the most recent analysis recorded for a server task ID
func (r *AnalysisRepository) GetByTaskID(taskID string) (*models.Analysis, error) {
	row := r.db.QueryRow(selectAnalysis+" WHERE a.task_id = ? AND a.deleted_at IS NULL ORDER BY a.sequence DESC LIMIT 1", taskID)
	return scanAnalysis(row, taskID)
}

// Update modifies the status fields of an existing analysis and replaces its result
func (r *AnalysisRepository) Update(analysis *models.Analysis) error {
	if err := analysis.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE analyses
		SET status = ?, progress = ?, message = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := tx.Exec(query,
		string(analysis.Status()),
		analysis.Progress(),
		nullString(analysis.Message()),
		analysis.CompletedAt(),
		now,
		analysis.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update analysis: %w", err)
	}

	if err := expectOneRow(result, analysis.ID()); err != nil {
		return err
	}

	if err := saveResult(tx, analysis); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}

	analysis.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes an analysis by ID
func (r *AnalysisRepository) Delete(id string) error {
	query := `
		UPDATE analyses
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	return expectOneRow(result, id)
}

// List retrieves analyses matching the given criteria, newest first, excluding soft-deleted analyses.
//
// Supported criteria: status, db_type, database (string) and limit (int).
func (r *AnalysisRepository) List(criteria map[string]any) ([]*models.Analysis, error) {
	query := selectAnalysis + " WHERE a.deleted_at IS NULL"
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND a.status = ?"
		args = append(args, status)
	}

	if dbType, ok := criteria["db_type"].(string); ok && dbType != "" {
		query += " AND a.db_type = ?"
		args = append(args, dbType)
	}

	if database, ok := criteria["database"].(string); ok && database != "" {
		query += " AND a.database_name = ?"
		args = append(args, database)
	}

	query += " ORDER BY a.sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	var analyses []*models.Analysis
	for rows.Next() {
		analysis, err := scanAnalysis(rows, "")
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return analyses, nil
}

func saveResult(tx *sql.Tx, analysis *models.Analysis) error {
	res := analysis.Result()
	if res == nil {
		return nil
	}

	query := `
		INSERT INTO analysis_results (
			analysis_id, tables_count, relations_count, enum_tables_count,
			dict_md, er_mermaid, schema_json
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(analysis_id) DO UPDATE SET
			tables_count = excluded.tables_count,
			relations_count = excluded.relations_count,
			enum_tables_count = excluded.enum_tables_count,
			dict_md = excluded.dict_md,
			er_mermaid = excluded.er_mermaid,
			schema_json = excluded.schema_json
	`

	_, err := tx.Exec(query,
		analysis.ID(),
		res.Stats.Tables,
		res.Stats.Relations,
		res.Stats.EnumTables,
		res.DictMD,
		res.ERMermaid,
		res.SchemaJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis result: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanAnalysis scans a joined analysis row into a [models.Analysis]
func scanAnalysis(s scanner, key string) (*models.Analysis, error) {
	var (
		id          string
		sequence    int
		taskID      string
		dbType      string
		host        string
		database    string
		schema      sql.NullString
		status      string
		progress    int
		message     sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
		completedAt sql.NullTime
		deletedAt   sql.NullTime
		tables      sql.NullInt64
		relations   sql.NullInt64
		enumTables  sql.NullInt64
		dictMD      sql.NullString
		erMermaid   sql.NullString
		schemaJSON  sql.NullString
	)

	err := s.Scan(
		&id, &sequence, &taskID, &dbType, &host, &database,
		&schema, &status, &progress, &message, &createdAt,
		&updatedAt, &completedAt, &deletedAt,
		&tables, &relations, &enumTables,
		&dictMD, &erMermaid, &schemaJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: analysis %s", shared.ErrRecordNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan analysis: %w", err)
	}

	analysis := models.NewAnalysis(taskID, models.AnalysisRequest{
		DBType:   dbType,
		Host:     host,
		Database: database,
		Schema:   schema.String,
	})
	analysis.SetID(id)
	analysis.SetSequence(sequence)
	analysis.SetStatus(models.Status(status))
	analysis.SetProgress(progress)
	analysis.SetMessage(message.String)
	analysis.SetCreatedAt(createdAt)
	analysis.SetUpdatedAt(updatedAt)

	if completedAt.Valid {
		analysis.SetCompletedAt(&completedAt.Time)
	}
	if deletedAt.Valid {
		analysis.SetDeletedAt(&deletedAt.Time)
	}
	if tables.Valid {
		analysis.SetResult(&models.Result{
			Stats: models.Stats{
				Tables:     int(tables.Int64),
				Relations:  int(relations.Int64),
				EnumTables: int(enumTables.Int64),
			},
			DictMD:     dictMD.String,
			ERMermaid:  erMermaid.String,
			SchemaJSON: schemaJSON.String,
		})
	}

	return analysis, nil
}

func expectOneRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: analysis not found or already deleted: %s", shared.ErrRecordNotFound, id)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
