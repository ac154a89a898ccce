package repository

import (
	"facescanner/internal/model"
)

// SessionRepository defines the interface for session journal operations.
type SessionRepository interface {
	// Create operations
	Insert(session *model.Session) error

	// Update operations
	Finish(session *model.Session) error

	// Read operations
	GetByID(id string) (*model.Session, error)
	GetRecent(limit int) ([]model.Session, error)

	// Delete operations
	Delete(id string) error
}

// ClassifierStatusRepository defines the interface for per-session classifier load records.
type ClassifierStatusRepository interface {
	// Create operations
	InsertBatch(statuses []model.ClassifierStatus) error

	// Read operations
	GetBySessionID(sessionID string) ([]model.ClassifierStatus, error)
	GetFailureCounts() (map[string]int, error)
}
