package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/schemax/internal/models"
	"github.com/gorilla/websocket"
)

// AnalysisServer is an httptest server that speaks the analysis API.
//
// Frames are pushed in order to each socket client. Polls are served in order
// to GET /api/task/{id}, the last body repeating once the list is exhausted.
type AnalysisServer struct {
	*httptest.Server

	TaskID string

	// Frames are written to the socket, one text message each.
	Frames []string
	// FrameDelay is slept before each frame.
	FrameDelay time.Duration
	// DropSocket closes the socket after the last frame instead of waiting for the client.
	DropSocket bool
	// RejectSocket answers the upgrade with 503.
	RejectSocket bool

	// Polls are the bodies returned by the task endpoint.
	Polls []string

	// SubmitStatus overrides the status of POST /api/analyze when non-zero.
	SubmitStatus int

	mu          sync.Mutex
	pollCount   int
	socketCount int
	submissions []models.AnalysisRequest
	upgrader    websocket.Upgrader
}

// NewAnalysisServer starts a fake analysis server closed at the end of the test.
func NewAnalysisServer(t *testing.T, taskID string) *AnalysisServer {
	t.Helper()
	s := &AnalysisServer{TaskID: taskID}
	s.upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/task/", s.handleTask)
	mux.HandleFunc("/api/ws", s.handleSocket)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// PollCount returns the number of task requests served.
func (s *AnalysisServer) PollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollCount
}

// SocketCount returns the number of socket upgrade attempts.
func (s *AnalysisServer) SocketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.socketCount
}

// Submissions returns the requests received by the analyze endpoint.
func (s *AnalysisServer) Submissions() []models.AnalysisRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AnalysisRequest(nil), s.submissions...)
}

func (s *AnalysisServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.submissions = append(s.submissions, req)
	status := s.SubmitStatus
	s.mu.Unlock()

	if status != 0 && status != http.StatusOK {
		http.Error(w, "submission rejected", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"task_id": s.TaskID, "status": "pending"})
}

func (s *AnalysisServer) handleTask(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/task/")

	s.mu.Lock()
	s.pollCount++
	n := s.pollCount
	polls := s.Polls
	s.mu.Unlock()

	if id != s.TaskID || len(polls) == 0 {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	body := polls[len(polls)-1]
	if n <= len(polls) {
		body = polls[n-1]
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func (s *AnalysisServer) handleSocket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.socketCount++
	s.mu.Unlock()

	if s.RejectSocket || r.URL.Query().Get("task_id") != s.TaskID {
		http.Error(w, "socket unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for _, frame := range s.Frames {
		if s.FrameDelay > 0 {
			time.Sleep(s.FrameDelay)
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return
		}
	}

	if s.DropSocket {
		return
	}

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
