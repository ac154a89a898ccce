package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"facescanner/internal/logger"
	"facescanner/internal/model"
	"facescanner/internal/service/journal"
	"facescanner/internal/service/scanner"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultSessionLimit = 20

// StatsProvider exposes the live counters of the running scanner.
type StatsProvider interface {
	Snapshot() scanner.Stats
}

// ClassifierLister reports which cascades were loaded at startup.
type ClassifierLister interface {
	Statuses() []scanner.ClassifierStatus
}

// SessionJournal is the read side of the session journal.
type SessionJournal interface {
	Recent(limit int) ([]model.Session, error)
	Get(id string) (*journal.Detail, error)
	Delete(id string) error
}

type classifierResponse struct {
	Label    string `json:"label"`
	Resource string `json:"resource"`
	Loaded   bool   `json:"loaded"`
	Error    string `json:"error,omitempty"`
}

type liveSessionResponse struct {
	State         string               `json:"state"`
	Frames        int                  `json:"frames"`
	Faces         int                  `json:"faces"`
	Detections    int                  `json:"detections"`
	StopReason    string               `json:"stop_reason,omitempty"`
	StartedAt     time.Time            `json:"started_at"`
	LastFrame     time.Time            `json:"last_frame"`
	UptimeSeconds float64              `json:"uptime_seconds"`
	Classifiers   []classifierResponse `json:"classifiers"`
}

// LiveSessionHandler reports the counters of the current run and the classifier load outcomes.
func LiveSessionHandler(stats StatsProvider, classifiers ClassifierLister, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := stats.Snapshot()

		resp := liveSessionResponse{
			State:      snap.State.String(),
			Frames:     snap.Frames,
			Faces:      snap.Faces,
			Detections: snap.Detections,
			StopReason: string(snap.Reason),
			StartedAt:  snap.StartedAt,
			LastFrame:  snap.LastFrame,
		}
		if !snap.StartedAt.IsZero() {
			resp.UptimeSeconds = time.Since(snap.StartedAt).Seconds()
		}
		for _, st := range classifiers.Statuses() {
			c := classifierResponse{Label: st.Label, Resource: st.Resource, Loaded: st.Loaded}
			if st.Err != nil {
				c.Error = st.Err.Error()
			}
			resp.Classifiers = append(resp.Classifiers, c)
		}

		writeJSON(w, http.StatusOK, resp, logger)
	}
}

// GetSessionsHandler lists the most recent journaled sessions; ?limit=N overrides the default.
func GetSessionsHandler(sessions SessionJournal, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultSessionLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		list, err := sessions.Recent(limit)
		if err != nil {
			logger.Error("Error querying sessions: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if list == nil {
			list = []model.Session{}
		}

		writeJSON(w, http.StatusOK, list, logger)
	}
}

// ViewSessionHandler returns one session with its classifier statuses.
func ViewSessionHandler(sessions SessionJournal, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "Session id required", http.StatusBadRequest)
			return
		}

		detail, err := sessions.Get(id)
		if errors.Is(err, journal.ErrNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("Error loading session %s: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, detail, logger)
	}
}

// DeleteSessionHandler removes a session from the journal.
func DeleteSessionHandler(sessions SessionJournal, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "Session id required", http.StatusBadRequest)
			return
		}

		err := sessions.Delete(id)
		if errors.Is(err, journal.ErrNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("Failed to delete session %s: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		logger.Info("Deleted session: %s", id)
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id}, logger)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
