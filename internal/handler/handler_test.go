package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"facescanner/internal/config"
	"facescanner/internal/logger"
	"facescanner/internal/model"
	"facescanner/internal/service/journal"
	"facescanner/internal/service/preview"
	"facescanner/internal/service/scanner"
)

// ========================================
// Helpers
// ========================================

func newTestLogger(t *testing.T) (*logger.Logger, *config.Config) {
	t.Helper()

	cfg := &config.Config{LogDirectory: t.TempDir(), LogLevel: "info"}
	lg := logger.NewLogger(cfg)
	t.Cleanup(func() { lg.Close() })
	return lg, cfg
}

type fakeStats struct{ stats scanner.Stats }

func (f fakeStats) Snapshot() scanner.Stats { return f.stats }

type fakeClassifiers []scanner.ClassifierStatus

func (f fakeClassifiers) Statuses() []scanner.ClassifierStatus { return f }

type fakeJournal struct {
	sessions []model.Session
	details  map[string]*journal.Detail
	deleted  []string
	err      error
}

func (f *fakeJournal) Recent(limit int) ([]model.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.sessions) {
		return f.sessions[:limit], nil
	}
	return f.sessions, nil
}

func (f *fakeJournal) Get(id string) (*journal.Detail, error) {
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return nil, journal.ErrNotFound
}

func (f *fakeJournal) Delete(id string) error {
	if _, ok := f.details[id]; !ok {
		return journal.ErrNotFound
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// ========================================
// Logs
// ========================================

func TestShowLogsHandler(t *testing.T) {
	lg, cfg := newTestLogger(t)
	lg.Info("hello from the scanner")

	rec := httptest.NewRecorder()
	ShowLogsHandler(cfg, LogFiles["info"])(rec, httptest.NewRequest(http.MethodGet, "/logs/info", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "hello from the scanner") {
		t.Errorf("Log content missing from response: %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Unexpected content type %q", ct)
	}
}

func TestShowLogsHandler_MissingFile(t *testing.T) {
	cfg := &config.Config{LogDirectory: t.TempDir()}

	rec := httptest.NewRecorder()
	ShowLogsHandler(cfg, "info.log")(rec, httptest.NewRequest(http.MethodGet, "/logs/info", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestClearLogsHandler(t *testing.T) {
	lg, cfg := newTestLogger(t)
	lg.Error("something broke")

	rec := httptest.NewRecorder()
	ClearLogsHandler(lg, "error.log")(rec, httptest.NewRequest(http.MethodPost, "/logs/error/clear", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	data, err := os.ReadFile(filepath.Join(cfg.LogDirectory, "error.log"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("error.log should be empty, got %q", data)
	}
}

func TestClearLogsHandler_RejectsGet(t *testing.T) {
	lg, _ := newTestLogger(t)

	rec := httptest.NewRecorder()
	ClearLogsHandler(lg, "error.log")(rec, httptest.NewRequest(http.MethodGet, "/logs/error/clear", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

// ========================================
// Live session
// ========================================

func TestLiveSessionHandler(t *testing.T) {
	lg, _ := newTestLogger(t)
	stats := fakeStats{scanner.Stats{
		State:      scanner.Running,
		Frames:     10,
		Faces:      4,
		Detections: 9,
		StartedAt:  time.Now().Add(-time.Minute),
	}}
	classifiers := fakeClassifiers{
		{Label: "Face", Resource: "haarcascade_frontalface_default.xml", Loaded: true},
		{Label: "Mouth", Resource: "haarcascade_mcs_mouth.xml", Err: scanner.ErrNoCascade},
	}

	rec := httptest.NewRecorder()
	LiveSessionHandler(stats, classifiers, lg)(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp liveSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if resp.State != scanner.Running.String() || resp.Frames != 10 || resp.Detections != 9 {
		t.Errorf("Unexpected response %+v", resp)
	}
	if resp.UptimeSeconds < 59 {
		t.Errorf("Expected about a minute of uptime, got %f", resp.UptimeSeconds)
	}
	if len(resp.Classifiers) != 2 || resp.Classifiers[1].Error == "" {
		t.Errorf("Classifier statuses not reported: %+v", resp.Classifiers)
	}
}

// ========================================
// Journal
// ========================================

func TestGetSessionsHandler(t *testing.T) {
	lg, _ := newTestLogger(t)
	j := &fakeJournal{sessions: []model.Session{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	tests := []struct {
		query    string
		code     int
		expected int
	}{
		{"", http.StatusOK, 3},
		{"?limit=2", http.StatusOK, 2},
		{"?limit=0", http.StatusBadRequest, 0},
		{"?limit=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		GetSessionsHandler(j, lg)(rec, httptest.NewRequest(http.MethodGet, "/api/sessions"+tt.query, nil))

		if rec.Code != tt.code {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.code, rec.Code)
			continue
		}
		if tt.code != http.StatusOK {
			continue
		}
		var list []model.Session
		if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
			t.Fatalf("Invalid JSON: %v", err)
		}
		if len(list) != tt.expected {
			t.Errorf("%q: expected %d sessions, got %d", tt.query, tt.expected, len(list))
		}
	}
}

func TestGetSessionsHandler_EmptyIsArray(t *testing.T) {
	lg, _ := newTestLogger(t)

	rec := httptest.NewRecorder()
	GetSessionsHandler(&fakeJournal{}, lg)(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("Expected empty JSON array, got %q", rec.Body.String())
	}
}

func TestGetSessionsHandler_Error(t *testing.T) {
	lg, _ := newTestLogger(t)

	rec := httptest.NewRecorder()
	GetSessionsHandler(&fakeJournal{err: errors.New("disk full")}, lg)(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func TestViewSessionHandler(t *testing.T) {
	lg, _ := newTestLogger(t)
	j := &fakeJournal{details: map[string]*journal.Detail{
		"s1": {Session: model.Session{ID: "s1", Source: "device:0"}},
	}}

	tests := []struct {
		query string
		code  int
	}{
		{"?id=s1", http.StatusOK},
		{"?id=missing", http.StatusNotFound},
		{"", http.StatusBadRequest},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		ViewSessionHandler(j, lg)(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/view"+tt.query, nil))
		if rec.Code != tt.code {
			t.Errorf("%q: expected %d, got %d", tt.query, tt.code, rec.Code)
		}
	}
}

func TestDeleteSessionHandler(t *testing.T) {
	lg, _ := newTestLogger(t)
	j := &fakeJournal{details: map[string]*journal.Detail{"s1": {}}}

	tests := []struct {
		method string
		query  string
		code   int
	}{
		{http.MethodGet, "?id=s1", http.StatusMethodNotAllowed},
		{http.MethodPost, "", http.StatusBadRequest},
		{http.MethodPost, "?id=missing", http.StatusNotFound},
		{http.MethodDelete, "?id=s1", http.StatusOK},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		DeleteSessionHandler(j, lg)(rec, httptest.NewRequest(tt.method, "/api/sessions/delete"+tt.query, nil))
		if rec.Code != tt.code {
			t.Errorf("%s %q: expected %d, got %d", tt.method, tt.query, tt.code, rec.Code)
		}
	}

	if len(j.deleted) != 1 || j.deleted[0] != "s1" {
		t.Errorf("Expected s1 to be deleted once, got %v", j.deleted)
	}
}

// ========================================
// Viewer websocket
// ========================================

func TestViewWebsocketHandler_ReceivesFrames(t *testing.T) {
	lg, _ := newTestLogger(t)
	hub := preview.NewHubService(lg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(ViewWebsocketHandler(hub, lg))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("Viewer was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := hub.Publish(preview.FrameMessage{Seq: 7, Image: []byte{0xFF, 0xD8, 0xFF, 0xD9}}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	var msg preview.FrameMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Invalid frame message: %v", err)
	}
	if msg.Seq != 7 || len(msg.Image) != 4 {
		t.Errorf("Unexpected frame message %+v", msg)
	}
}

func TestViewWebsocketHandler_HubStopped(t *testing.T) {
	lg, _ := newTestLogger(t)
	hub := preview.NewHubService(lg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	finished := make(chan struct{})
	viewer := ViewWebsocketHandler(hub, lg)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer(w, r)
		close(finished)
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("Viewer handler should return once the hub has stopped")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("No viewer should be registered on a stopped hub")
	}
}
