package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/tasks"
)

func TestBasicRouter(t *testing.T) {
	t.Run("Method Filtering", func(t *testing.T) {
		r := NewBasicRouter()
		r.HandleFunc(http.MethodGet, "/ping", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("pong"))
		})

		tests := []struct {
			method string
			want   int
		}{
			{http.MethodGet, http.StatusOK},
			{http.MethodHead, http.StatusOK},
			{http.MethodPost, http.StatusMethodNotAllowed},
		}

		for _, tt := range tests {
			t.Run(tt.method, func(t *testing.T) {
				rec := httptest.NewRecorder()
				r.ServeHTTP(rec, httptest.NewRequest(tt.method, "/ping", nil))
				if rec.Code != tt.want {
					t.Errorf("expected %d, got %d", tt.want, rec.Code)
				}
			})
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, req)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.HandleFunc(http.MethodGet, "/", func(http.ResponseWriter, *http.Request) { order = append(order, "handler") })
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if got := strings.Join(order, ","); got != "first,second,handler" {
			t.Errorf("expected first,second,handler, got %s", got)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("Logging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)

		h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/schema.json", nil))

		out := buf.String()
		if !strings.Contains(out, "path=/schema.json") || !strings.Contains(out, "status=418") {
			t.Errorf("unexpected log output: %s", out)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		h := Recover(log.New(io.Discard))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestReportHandler(t *testing.T) {
	view := tasks.NewResultView(&models.Result{
		Stats:      models.Stats{Tables: 5, Relations: 3, EnumTables: 1},
		DictMD:     "# D\n| a | b |",
		ERMermaid:  "erDiagram\n  A ||--o{ B : has",
		SchemaJSON: `{"a":1}`,
	}, nil)

	r := NewBasicRouter()
	r.Handler(NewReportHandler("shop", view))
	srv := httptest.NewServer(r)
	defer srv.Close()

	tests := []struct {
		path        string
		status      int
		contentType string
		contains    []string
	}{
		{
			path:        "/",
			status:      http.StatusOK,
			contentType: "text/html",
			contains:    []string{"<title>shop</title>", "<h1>D</h1>", "Tables: 5 | Relations: 3 | Enum tables: 1", "A ||--o{ B : has"},
		},
		{path: "/schema.json", status: http.StatusOK, contentType: "application/json", contains: []string{"{\n  \"a\": 1\n}"}},
		{path: "/er_diagram.mmd", status: http.StatusOK, contentType: "text/plain", contains: []string{"erDiagram"}},
		{path: "/data_dictionary.md", status: http.StatusOK, contentType: "text/markdown", contains: []string{"# D"}},
		{path: "/missing", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if tt.contentType != "" && !strings.HasPrefix(resp.Header.Get("Content-Type"), tt.contentType) {
				t.Errorf("expected content type %s, got %s", tt.contentType, resp.Header.Get("Content-Type"))
			}

			body, _ := io.ReadAll(resp.Body)
			for _, want := range tt.contains {
				if !strings.Contains(string(body), want) {
					t.Errorf("expected body to contain %q", want)
				}
			}
		})
	}
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
