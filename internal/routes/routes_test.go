package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"

	"facescanner/internal/config"
	"facescanner/internal/logger"
	"facescanner/internal/model"
	"facescanner/internal/service/journal"
	"facescanner/internal/service/scanner"
)

type nopHub struct{}

func (nopHub) Register(*websocket.Conn)   {}
func (nopHub) Unregister(*websocket.Conn) {}

type idleStats struct{}

func (idleStats) Snapshot() scanner.Stats { return scanner.Stats{State: scanner.Stopped} }

type noClassifiers struct{}

func (noClassifiers) Statuses() []scanner.ClassifierStatus { return nil }

type emptyJournal struct{}

func (emptyJournal) Recent(int) ([]model.Session, error)  { return nil, nil }
func (emptyJournal) Get(string) (*journal.Detail, error) { return nil, journal.ErrNotFound }
func (emptyJournal) Delete(string) error                 { return journal.ErrNotFound }

func newRouter(t *testing.T, j bool) http.Handler {
	t.Helper()

	cfg := &config.Config{LogDirectory: t.TempDir(), LogLevel: "error"}
	lg := logger.NewLogger(cfg)
	t.Cleanup(func() { lg.Close() })

	svc := Services{Hub: nopHub{}, Stats: idleStats{}, Classifiers: noClassifiers{}}
	if j {
		svc.Journal = emptyJournal{}
	}
	return SetupRoutes(svc, cfg, lg)
}

func TestSetupRoutes(t *testing.T) {
	router := newRouter(t, true)

	tests := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/api/session", http.StatusOK},
		{http.MethodGet, "/api/sessions", http.StatusOK},
		{http.MethodGet, "/api/sessions/view?id=x", http.StatusNotFound},
		{http.MethodGet, "/logs/info", http.StatusOK},
		{http.MethodGet, "/logs/warning", http.StatusOK},
		{http.MethodGet, "/logs/error", http.StatusOK},
		{http.MethodPost, "/logs/info/clear", http.StatusNoContent},
		{http.MethodGet, "/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != tt.code {
			t.Errorf("%s %s: expected %d, got %d", tt.method, tt.path, tt.code, rec.Code)
		}
	}
}

func TestSetupRoutes_WithoutJournal(t *testing.T) {
	router := newRouter(t, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Journal routes should not exist without a journal, got %d", rec.Code)
	}
}
