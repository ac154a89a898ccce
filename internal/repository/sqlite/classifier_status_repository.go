package sqlite

import (
	"fmt"

	"facescanner/internal/model"
)

// ClassifierStatusRepository implements repository.ClassifierStatusRepository for SQLite.
type ClassifierStatusRepository struct {
	db *DB
}

// NewClassifierStatusRepository creates a new SQLite classifier status repository.
func NewClassifierStatusRepository(db *DB) *ClassifierStatusRepository {
	return &ClassifierStatusRepository{db: db}
}

// InsertBatch adds multiple classifier statuses in a single transaction.
func (r *ClassifierStatusRepository) InsertBatch(statuses []model.ClassifierStatus) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO classifier_statuses (session_id, feature, resource, loaded, error)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, s := range statuses {
		if _, err := stmt.Exec(s.SessionID, s.Feature, s.Resource, s.Loaded, s.Error); err != nil {
			return fmt.Errorf("failed to insert classifier status: %w", err)
		}
	}

	return tx.Commit()
}

// GetBySessionID retrieves the classifier statuses recorded for a session.
func (r *ClassifierStatusRepository) GetBySessionID(sessionID string) ([]model.ClassifierStatus, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT id, session_id, feature, resource, loaded, error
		FROM classifier_statuses WHERE session_id = ?
		ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classifier statuses: %w", err)
	}
	defer rows.Close()

	var statuses []model.ClassifierStatus
	for rows.Next() {
		var s model.ClassifierStatus
		if err := rows.Scan(&s.ID, &s.SessionID, &s.Feature, &s.Resource, &s.Loaded, &s.Error); err != nil {
			return nil, fmt.Errorf("failed to scan classifier status: %w", err)
		}
		statuses = append(statuses, s)
	}

	return statuses, rows.Err()
}

// GetFailureCounts returns, per feature, how many sessions started without its cascade.
func (r *ClassifierStatusRepository) GetFailureCounts() (map[string]int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`
		SELECT feature, COUNT(*) FROM classifier_statuses
		WHERE loaded = 0
		GROUP BY feature
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query classifier failures: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var feature string
		var count int
		if err := rows.Scan(&feature, &count); err != nil {
			return nil, fmt.Errorf("failed to scan classifier failures: %w", err)
		}
		counts[feature] = count
	}

	return counts, rows.Err()
}
