package models

import (
	"testing"
)

func TestDecodeSnapshot(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		taskID       string
		wantStatus   Status
		wantProgress *int
		wantMessage  *string
		wantResult   bool
		wantTaskID   string
		wantErr      bool
	}{
		{
			name:         "documented lowercase keys",
			payload:      `{"status":"processing","progress":40,"message":"Inferring relations"}`,
			taskID:       "T1",
			wantStatus:   StatusProcessing,
			wantProgress: intPtr(40),
			wantMessage:  strPtr("Inferring relations"),
			wantTaskID:   "T1",
		},
		{
			name:         "server struct keys with running status",
			payload:      `{"ID":"task_1","Status":"running","Progress":10,"Message":"Connecting","Result":null}`,
			taskID:       "ignored",
			wantStatus:   StatusProcessing,
			wantProgress: intPtr(10),
			wantMessage:  strPtr("Connecting"),
			wantTaskID:   "task_1",
		},
		{
			name:       "missing progress and message",
			payload:    `{"status":"pending"}`,
			taskID:     "T2",
			wantStatus: StatusPending,
			wantTaskID: "T2",
		},
		{
			name:         "completed with result",
			payload:      `{"status":"completed","progress":100,"result":{"stats":{"tables":5,"relations":3,"enum_tables":1},"dict_md":"# D","er_mermaid":"erDiagram","schema_json":"{\"a\":1}"}}`,
			taskID:       "T3",
			wantStatus:   StatusCompleted,
			wantProgress: intPtr(100),
			wantResult:   true,
			wantTaskID:   "T3",
		},
		{
			name:    "invalid json",
			payload: `{"status":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := DecodeSnapshot([]byte(tt.payload), tt.taskID)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeSnapshot() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if s.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", s.Status, tt.wantStatus)
			}
			if s.TaskID != tt.wantTaskID {
				t.Errorf("task id = %q, want %q", s.TaskID, tt.wantTaskID)
			}
			if (s.Progress == nil) != (tt.wantProgress == nil) || (s.Progress != nil && *s.Progress != *tt.wantProgress) {
				t.Errorf("progress = %v, want %v", s.Progress, tt.wantProgress)
			}
			if (s.Message == nil) != (tt.wantMessage == nil) || (s.Message != nil && *s.Message != *tt.wantMessage) {
				t.Errorf("message = %v, want %v", s.Message, tt.wantMessage)
			}
			if (s.Result != nil) != tt.wantResult {
				t.Errorf("result present = %v, want %v", s.Result != nil, tt.wantResult)
			}
		})
	}
}

func TestDecodeSnapshotResult(t *testing.T) {
	payload := `{"status":"completed","result":{"stats":{"tables":5,"relations":3,"enum_tables":1},"dict_md":"# D","er_mermaid":"erDiagram","schema_json":"{\"a\":1}"}}`

	s, err := DecodeSnapshot([]byte(payload), "T1")
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}

	if got := s.Result.Stats.String(); got != "5/3/1" {
		t.Errorf("stats = %q, want 5/3/1", got)
	}
	if s.Result.DictMD != "# D" {
		t.Errorf("dict_md = %q", s.Result.DictMD)
	}
	if s.Result.ERMermaid != "erDiagram" {
		t.Errorf("er_mermaid = %q", s.Result.ERMermaid)
	}
	if s.Result.SchemaJSON != `{"a":1}` {
		t.Errorf("schema_json = %q", s.Result.SchemaJSON)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	for status, want := range map[Status]bool{
		StatusPending:    false,
		StatusProcessing: false,
		StatusCompleted:  true,
		StatusFailed:     true,
		Status("other"):  false,
	} {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%q.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestAnalysis(t *testing.T) {
	req := AnalysisRequest{DBType: "mysql", Host: "db.local", Database: "shop", Schema: "shop"}

	t.Run("As Record", func(t *testing.T) {
		var rec Record = NewAnalysis("T1", req)
		if rec.ID() != "" {
			t.Errorf("expected no ID before persisting, got %q", rec.ID())
		}
		if rec.UpdatedAt().Before(rec.CreatedAt()) {
			t.Error("updated_at should not precede created_at")
		}
		if err := rec.Validate(); err != nil {
			t.Errorf("expected valid record, got %v", err)
		}

		if err := Record(NewAnalysis("", req)).Validate(); err == nil {
			t.Error("expected a record without task ID to be invalid")
		}
	})

	t.Run("NewAnalysis", func(t *testing.T) {
		a := NewAnalysis("T1", req)
		if a.Status() != StatusPending {
			t.Errorf("expected pending status, got %s", a.Status())
		}
		if a.CreatedAt().IsZero() || a.UpdatedAt().IsZero() {
			t.Error("timestamps should be set")
		}
		if err := a.Validate(); err != nil {
			t.Errorf("expected valid analysis, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			mutate  func(a *Analysis)
			wantErr bool
		}{
			{name: "missing task id", mutate: func(a *Analysis) { a.taskID = "" }, wantErr: true},
			{name: "missing db type", mutate: func(a *Analysis) { a.dbType = "" }, wantErr: true},
			{name: "progress out of range", mutate: func(a *Analysis) { a.SetProgress(101) }, wantErr: true},
			{name: "unknown status", mutate: func(a *Analysis) { a.SetStatus("weird") }, wantErr: true},
			{name: "completed without result", mutate: func(a *Analysis) { a.SetStatus(StatusCompleted) }, wantErr: true},
			{name: "failed without result", mutate: func(a *Analysis) { a.SetStatus(StatusFailed) }, wantErr: false},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				a := NewAnalysis("T1", req)
				tt.mutate(a)
				if err := a.Validate(); (err != nil) != tt.wantErr {
					t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			})
		}
	})

	t.Run("Settle", func(t *testing.T) {
		a := NewAnalysis("T1", req)
		result := &Result{Stats: Stats{Tables: 2}}
		a.Settle(StatusCompleted, 100, "done", result)

		if a.Status() != StatusCompleted || a.Progress() != 100 || a.Message() != "done" {
			t.Errorf("unexpected settled state: %s %d %q", a.Status(), a.Progress(), a.Message())
		}
		if a.Result() != result {
			t.Error("expected result to be stored")
		}
		if a.CompletedAt() == nil {
			t.Error("expected completed_at to be set")
		}
	})
}

func TestAnalysisRequestConnection(t *testing.T) {
	req := AnalysisRequest{DBType: "sqlserver", Host: "h", Port: "1433", Username: "sa", Password: "pw", Database: "d"}
	conn := req.Connection()

	want := ConnectionParams{DBType: "sqlserver", Host: "h", Port: "1433", Username: "sa", Password: "pw"}
	if conn != want {
		t.Errorf("Connection() = %+v, want %+v", conn, want)
	}
	if DefaultPort("sqlserver") != "1433" || DefaultPort("mysql") != "3306" {
		t.Error("unexpected default ports")
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
