package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"facescanner/internal/config"
	"facescanner/internal/logger"
	"facescanner/internal/model"
	"facescanner/internal/repository/sqlite"
	"facescanner/internal/routes"
	"facescanner/internal/service/journal"
	"facescanner/internal/service/preview"
	"facescanner/internal/service/scanner"
	"facescanner/internal/service/vision"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config   *config.Config
	logger   *logger.Logger
	registry *scanner.Registry
	source   scanner.FrameSource
	display  scanner.Display
	runner   *scanner.Runner
	hub      *preview.HubService
	db       *sqlite.DB
	journal  *journal.Service
}

// NewApp loads every classifier, opens the frame source and the display. A missing
// classifier is only a warning; a source that cannot be opened is an error.
func NewApp(cfg *config.Config, logger *logger.Logger) (*App, error) {
	a := &App{config: cfg, logger: logger}

	a.registry = scanner.NewRegistry(vision.NewCascadeProvider(cfg.CascadeDir), logger)
	a.registry.LoadAll(scanner.AllFeatures...)

	source, err := openSource(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.source = source

	if cfg.SessionDB != "" {
		if err := a.openJournal(); err != nil {
			a.Close()
			return nil, err
		}
	}

	switch cfg.DisplayMode {
	case config.DisplayPreview:
		a.hub = preview.NewHubService(logger)
		a.display = vision.NewStreamDisplay(a.hub)
	default:
		a.display = vision.NewWindow(cfg.WindowTitle)
	}

	return a, nil
}

func openSource(cfg *config.Config, logger *logger.Logger) (scanner.FrameSource, error) {
	switch cfg.CameraSource {
	case config.SourceFile:
		return vision.OpenFile(cfg.CameraFile, logger)
	case config.SourceUDP:
		return vision.ListenUDP(cfg.CameraUDPPort, time.Duration(cfg.CameraUDPIdleSec)*time.Second, logger)
	default:
		return vision.OpenDevice(cfg.CameraDevice, logger)
	}
}

func (a *App) openJournal() error {
	if dir := filepath.Dir(a.config.SessionDB); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create session database directory: %w", err)
		}
	}

	db, err := sqlite.New(a.config.SessionDB)
	if err != nil {
		return err
	}

	a.db = db
	a.journal = journal.NewService(sqlite.NewSessionRepository(db), sqlite.NewClassifierStatusRepository(db), a.logger)
	return nil
}

// Run drives the scanner until the quit key, end of stream, or ctx cancellation.
// Only a display failure is returned as an error.
func (a *App) Run(ctx context.Context) error {
	a.runner = scanner.NewRunner(a.source, a.display, vision.NewAnnotator(), scanner.NewPipeline(a.registry), a.logger, scanner.RunnerOptions{
		QuitKey:        a.config.QuitKey[0],
		KeyWait:        time.Duration(a.config.KeyWaitMillis) * time.Millisecond,
		ShouldContinue: func() bool { return ctx.Err() == nil },
	})

	if a.hub != nil {
		stop := a.startPreview(ctx)
		defer stop()
	}

	a.logger.Info("Face Scanner started: source %s, display %s", a.config.SourceName(), a.config.DisplayMode)

	var session *model.Session
	if a.journal != nil {
		var err error
		session, err = a.journal.Begin(a.config.SourceName(), a.config.DisplayMode, a.registry.Statuses())
		if err != nil {
			a.logger.Error("Failed to record session start: %v", err)
		}
	}

	stats, runErr := a.runner.Run()

	if session != nil {
		if err := a.journal.End(session, stats); err != nil {
			a.logger.Error("Failed to record session end: %v", err)
		}
	}

	return runErr
}

// startPreview serves viewers in the background and returns a function that stops it.
func (a *App) startPreview(ctx context.Context) func() {
	hubCtx, cancelHub := context.WithCancel(ctx)
	go a.hub.Run(hubCtx)

	svc := routes.Services{Hub: a.hub, Stats: a.runner, Classifiers: a.registry}
	if a.journal != nil {
		svc.Journal = a.journal
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.PreviewPort),
		Handler: routes.SetupRoutes(svc, a.config, a.logger),
	}

	go func() {
		a.logger.Info("Preview available at http://localhost:%d/api/view", a.config.PreviewPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Preview server failed: %v", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Preview server shutdown failed: %v", err)
		}
		cancelHub()
	}
}

// Close releases the display, the source, every classifier and the journal.
func (a *App) Close() error {
	var errs []error
	if a.display != nil {
		errs = append(errs, a.display.Close())
	}
	if a.source != nil {
		errs = append(errs, a.source.Close())
	}
	if a.registry != nil {
		errs = append(errs, a.registry.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}
