// API service for making HTTP requests to the analysis server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/schemax/internal/models"
	"github.com/desertthunder/schemax/internal/shared"
	"golang.org/x/time/rate"
)

var _ Service = (*APIService)(nil)

// APIService provides methods for making HTTP requests to the analysis server.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewAPIService creates a new API service instance for the analysis server.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// SetRateLimit caps outbound requests at rps per second. A non-positive rps removes the limit.
func (a *APIService) SetRateLimit(rps float64) {
	if rps <= 0 {
		a.limiter = nil
		return
	}
	a.limiter = rate.NewLimiter(rate.Limit(rps), 1)
}

// Name returns the service name.
func (a *APIService) Name() string { return "schema-analyzer" }

// BaseURL returns the server base URL without a trailing slash.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// OK reports whether the response has a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return a.do(ctx, req)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(ctx, req)
}

func (a *APIService) do(ctx context.Context, req *http.Request) (*APIResponse, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}

	var jsonData any
	if err := json.Unmarshal(body, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

func (a *APIService) postJSON(ctx context.Context, path string, payload any) (*APIResponse, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", shared.ErrInvalidInput, err)
	}

	resp, err := a.Post(ctx, path, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: %s returned status %d: %s", shared.ErrAPIRequest, path, resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}
	return resp, nil
}

// Submit posts an analysis request and returns the server-assigned task id.
func (a *APIService) Submit(ctx context.Context, req models.AnalysisRequest) (string, error) {
	resp, err := a.postJSON(ctx, "/api/analyze", req)
	if err != nil {
		return "", err
	}

	var accepted struct {
		TaskID string `json:"task_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body, &accepted); err != nil {
		return "", fmt.Errorf("%w: invalid submission response: %v", shared.ErrAPIRequest, err)
	}
	if accepted.TaskID == "" {
		return "", fmt.Errorf("%w: submission response has no task_id", shared.ErrAPIRequest)
	}
	return accepted.TaskID, nil
}

// GetTask fetches the current snapshot of a task.
func (a *APIService) GetTask(ctx context.Context, taskID string) (*models.Snapshot, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: task id is empty", shared.ErrMissingArgument)
	}

	resp, err := a.Get(ctx, "/api/task/"+url.PathEscape(taskID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrTaskNotFound, taskID)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}

	snapshot, err := models.DecodeSnapshot(resp.Body, taskID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return &snapshot, nil
}

// TaskSocketURL returns the push channel URL for a task, mapping http(s) to ws(s).
func (a *APIService) TaskSocketURL(taskID string) (string, error) {
	u, err := url.Parse(a.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base URL: %v", shared.ErrInvalidConfig, err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", shared.ErrInvalidConfig, u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/api/ws"
	u.RawQuery = url.Values{"task_id": []string{taskID}}.Encode()
	return u.String(), nil
}

// ConnectionResult is the response of the test-connection endpoint.
type ConnectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TestConnection asks the server to open and ping a database connection.
//
// A failed ping is reported through [ConnectionResult.Success], not as an error.
func (a *APIService) TestConnection(ctx context.Context, params models.ConnectionParams) (*ConnectionResult, error) {
	resp, err := a.postJSON(ctx, "/api/test-connection", params)
	if err != nil {
		return nil, err
	}

	var result ConnectionResult
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("%w: invalid test-connection response: %v", shared.ErrAPIRequest, err)
	}
	return &result, nil
}

// ListDatabases returns the user databases visible with the given credentials.
func (a *APIService) ListDatabases(ctx context.Context, params models.ConnectionParams) ([]string, error) {
	resp, err := a.postJSON(ctx, "/api/list-databases", params)
	if err != nil {
		return nil, err
	}

	var result struct {
		Success   bool     `json:"success"`
		Databases []string `json:"databases"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("%w: invalid list-databases response: %v", shared.ErrAPIRequest, err)
	}
	if !result.Success {
		return nil, fmt.Errorf("%w: failed to list databases", shared.ErrAPIRequest)
	}
	return result.Databases, nil
}
