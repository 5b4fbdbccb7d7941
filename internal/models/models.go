package models

import "time"

// Record is an entity persisted in the history database.
type Record interface {
	ID() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Validate() error
}

// Store is the CRUD contract shared by record repositories.
type Store[T Record] interface {
	Create(record T) error
	Get(id string) (T, error)
	Update(record T) error
	Delete(id string) error
	List(criteria map[string]any) ([]T, error)
}

// HistoryStore persists analyses and looks them up by server task ID.
type HistoryStore interface {
	Store[*Analysis]
	GetByTaskID(taskID string) (*Analysis, error)
}
