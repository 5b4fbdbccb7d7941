// package services defines the interface to the schema analysis server
package services

import (
	"context"

	"github.com/desertthunder/schemax/internal/models"
)

// Service defines the operations offered by the analysis server.
type Service interface {
	// Submit starts an analysis job and returns its task id.
	Submit(ctx context.Context, req models.AnalysisRequest) (string, error)

	// GetTask retrieves the current snapshot of a task.
	GetTask(ctx context.Context, taskID string) (*models.Snapshot, error)

	// TaskSocketURL returns the streaming endpoint for a task.
	TaskSocketURL(taskID string) (string, error)

	// TestConnection checks that the server can reach a database.
	TestConnection(ctx context.Context, params models.ConnectionParams) (*ConnectionResult, error)

	// ListDatabases lists databases reachable with the given credentials.
	ListDatabases(ctx context.Context, params models.ConnectionParams) ([]string, error)

	// Name returns the name of the service
	Name() string
}
