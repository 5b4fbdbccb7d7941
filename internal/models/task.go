package models

import (
	"encoding/json"
	"fmt"
)

// Status is the server-side lifecycle state of an analysis task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// IsTerminal reports whether no further snapshots are meaningful after s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// UnmarshalJSON accepts the server's "running" spelling for [StatusProcessing].
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "running":
		*s = StatusProcessing
	default:
		*s = Status(raw)
	}
	return nil
}

// Stats holds the counters reported for a completed analysis.
type Stats struct {
	Tables     int `json:"tables"`
	Relations  int `json:"relations"`
	EnumTables int `json:"enum_tables"`
}

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d/%d", s.Tables, s.Relations, s.EnumTables)
}

// Result is the payload of a completed task.
type Result struct {
	Stats      Stats  `json:"stats"`
	DictMD     string `json:"dict_md"`
	ERMermaid  string `json:"er_mermaid"`
	SchemaJSON string `json:"schema_json"`
}

// Snapshot is an immutable point-in-time copy of a task's observable fields.
//
// Progress and Message are nil when the payload omitted them.
// Field names match case-insensitively, so both the documented lowercase keys and the
// server's untagged struct keys (Status, Progress, ...) decode.
type Snapshot struct {
	TaskID   string  `json:"id,omitempty"`
	Status   Status  `json:"status"`
	Progress *int    `json:"progress,omitempty"`
	Message  *string `json:"message,omitempty"`
	Result   *Result `json:"result,omitempty"`
}

// DecodeSnapshot parses one channel message. taskID fills in the identifier when the payload has none.
func DecodeSnapshot(data []byte, taskID string) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.TaskID == "" {
		s.TaskID = taskID
	}
	return s, nil
}

// AnalysisRequest is the submission payload for POST /api/analyze.
type AnalysisRequest struct {
	DBType     string `json:"db_type"`
	Host       string `json:"host"`
	Port       string `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Database   string `json:"database"`
	Schema     string `json:"schema"`
	SampleSize int    `json:"sample_size"`
	EnableAI   bool   `json:"enable_ai"`
	APIKey     string `json:"api_key"`
}

// Connection returns the subset of the request used by the connection helpers.
func (r AnalysisRequest) Connection() ConnectionParams {
	return ConnectionParams{
		DBType:   r.DBType,
		Host:     r.Host,
		Port:     r.Port,
		Username: r.Username,
		Password: r.Password,
	}
}

// ConnectionParams is the payload for the test-connection and list-databases endpoints.
type ConnectionParams struct {
	DBType   string `json:"db_type"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// DefaultPort returns the conventional port for a database type.
func DefaultPort(dbType string) string {
	switch dbType {
	case "sqlserver":
		return "1433"
	default:
		return "3306"
	}
}
