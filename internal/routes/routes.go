package routes

import (
	"net/http"

	"facescanner/internal/config"
	"facescanner/internal/handler"
	"facescanner/internal/logger"
)

// Services bundles what the preview server exposes. Journal may be nil when no
// session database is configured.
type Services struct {
	Hub         handler.ViewerHub
	Stats       handler.StatsProvider
	Classifiers handler.ClassifierLister
	Journal     handler.SessionJournal
}

// SetupRoutes registers the preview websocket, the live session endpoint,
// the journal API and the log endpoints.
func SetupRoutes(svc Services, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/view", handler.ViewWebsocketHandler(svc.Hub, logger))
	mux.HandleFunc("/api/session", handler.LiveSessionHandler(svc.Stats, svc.Classifiers, logger))

	if svc.Journal != nil {
		mux.HandleFunc("/api/sessions", handler.GetSessionsHandler(svc.Journal, logger))
		mux.HandleFunc("/api/sessions/view", handler.ViewSessionHandler(svc.Journal, logger))
		mux.HandleFunc("/api/sessions/delete", handler.DeleteSessionHandler(svc.Journal, logger))
	}

	// Log endpoints
	for level, file := range handler.LogFiles {
		mux.HandleFunc("/logs/"+level, handler.ShowLogsHandler(cfg, file))
		mux.HandleFunc("/logs/"+level+"/clear", handler.ClearLogsHandler(logger, file))
	}

	return mux
}
