package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestIndentJSON(t *testing.T) {
	tc := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "flat object",
			raw:  `{"a":1}`,
			want: "{\n  \"a\": 1\n}",
		},
		{
			name: "nested object keeps key order",
			raw:  `{"z":{"b":[1,2]},"a":true}`,
			want: "{\n  \"z\": {\n    \"b\": [\n      1,\n      2\n    ]\n  },\n  \"a\": true\n}",
		},
		{
			name:    "invalid document",
			raw:     `{"a":`,
			wantErr: true,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IndentJSON(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("IndentJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("IndentJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("GenerateID() returned invalid uuid %q: %v", id, err)
	}
	if id == GenerateID() {
		t.Error("GenerateID() should not repeat")
	}
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "schemax.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	logger.Info("hello", "task_id", "T1")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), "task_id=T1") {
		t.Errorf("unexpected log contents: %q", data)
	}
}

func TestBrowserCommand(t *testing.T) {
	tc := []struct {
		goos     string
		wantName string
		wantArgs int
		wantErr  bool
	}{
		{goos: "darwin", wantName: "open", wantArgs: 1},
		{goos: "linux", wantName: "xdg-open", wantArgs: 1},
		{goos: "windows", wantName: "rundll32", wantArgs: 2},
		{goos: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			t.Setenv("BROWSER", "")
			name, args, err := browserCommand(tt.goos, "http://localhost:8080")
			if (err != nil) != tt.wantErr {
				t.Fatalf("browserCommand() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if name != tt.wantName || len(args) != tt.wantArgs {
				t.Errorf("expected %s with %d args, got %s %v", tt.wantName, tt.wantArgs, name, args)
			}
			if args[len(args)-1] != "http://localhost:8080" {
				t.Errorf("expected URL as last argument, got %v", args)
			}
		})
	}

	t.Run("BROWSER Override", func(t *testing.T) {
		t.Setenv("BROWSER", "firefox")
		name, args, err := browserCommand("plan9", "http://x")
		if err != nil || name != "firefox" || len(args) != 1 {
			t.Errorf("expected firefox override, got %s %v %v", name, args, err)
		}
	})
}
