package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"facescanner/internal/logger"
	"facescanner/internal/model"
	"facescanner/internal/repository"
	"facescanner/internal/service/scanner"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// Detail is a session with the classifier load outcomes recorded at its start.
type Detail struct {
	Session     model.Session            `json:"session"`
	Classifiers []model.ClassifierStatus `json:"classifiers"`
}

// Service records scanner sessions. Frames and detections are never persisted, only counters.
type Service struct {
	sessions    repository.SessionRepository
	classifiers repository.ClassifierStatusRepository
	logger      *logger.Logger
	now         func() time.Time
}

func NewService(sessions repository.SessionRepository, classifiers repository.ClassifierStatusRepository, logger *logger.Logger) *Service {
	return &Service{
		sessions:    sessions,
		classifiers: classifiers,
		logger:      logger,
		now:         time.Now,
	}
}

// Begin stores a new running session together with the classifier load outcomes.
func (s *Service) Begin(source, displayMode string, statuses []scanner.ClassifierStatus) (*model.Session, error) {
	session := &model.Session{
		ID:          uuid.NewString(),
		Source:      source,
		DisplayMode: displayMode,
		StartedAt:   s.now(),
	}

	if err := s.sessions.Insert(session); err != nil {
		return nil, err
	}

	records := make([]model.ClassifierStatus, 0, len(statuses))
	for _, st := range statuses {
		record := model.ClassifierStatus{
			SessionID: session.ID,
			Feature:   st.Label,
			Resource:  st.Resource,
			Loaded:    st.Loaded,
		}
		if st.Err != nil {
			record.Error = st.Err.Error()
		}
		records = append(records, record)
	}

	if err := s.classifiers.InsertBatch(records); err != nil {
		return nil, err
	}

	s.logger.Info("Session %s started (source %s, display %s)", session.ID, source, displayMode)
	return session, nil
}

// End stores the final counters of a run.
func (s *Service) End(session *model.Session, stats scanner.Stats) error {
	session.EndedAt = s.now()
	session.Frames = stats.Frames
	session.Faces = stats.Faces
	session.Detections = stats.Detections
	session.StopReason = string(stats.Reason)

	if err := s.sessions.Finish(session); err != nil {
		return err
	}

	s.logger.Info("Session %s ended (%s) after %s", session.ID, session.StopReason, session.Duration().Round(time.Millisecond))
	return nil
}

// Recent lists the latest sessions, newest first.
func (s *Service) Recent(limit int) ([]model.Session, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return s.sessions.GetRecent(limit)
}

// Get returns a session and its classifier statuses.
func (s *Service) Get(id string) (*Detail, error) {
	session, err := s.sessions.GetByID(id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	classifiers, err := s.classifiers.GetBySessionID(id)
	if err != nil {
		return nil, err
	}

	return &Detail{Session: *session, Classifiers: classifiers}, nil
}

// Delete removes a session and its classifier statuses.
func (s *Service) Delete(id string) error {
	session, err := s.sessions.GetByID(id)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.sessions.Delete(id)
}

// MissingCascades counts, per feature, the sessions that started without its cascade.
func (s *Service) MissingCascades() (map[string]int, error) {
	return s.classifiers.GetFailureCounts()
}
