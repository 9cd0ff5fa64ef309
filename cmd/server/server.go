package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codebuildervaibhav/video-analyzer/internal/analysis"
	"github.com/codebuildervaibhav/video-analyzer/internal/cleanup"
	"github.com/codebuildervaibhav/video-analyzer/internal/config"
	"github.com/codebuildervaibhav/video-analyzer/internal/handlers"
	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
	"github.com/codebuildervaibhav/video-analyzer/internal/observe"
	"github.com/codebuildervaibhav/video-analyzer/internal/queue"
	"github.com/codebuildervaibhav/video-analyzer/internal/session"
	"github.com/codebuildervaibhav/video-analyzer/internal/storage"
	"github.com/codebuildervaibhav/video-analyzer/internal/transcript"
	"github.com/codebuildervaibhav/video-analyzer/internal/transcription"
	"github.com/codebuildervaibhav/video-analyzer/internal/translation"
	"github.com/codebuildervaibhav/video-analyzer/internal/youtube"
)

func runServer(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Everything logged is also kept for GET /logs
	logBuffer := logger.NewBuffer(logger.DefaultBufferLines)
	out := io.MultiWriter(os.Stdout, logBuffer)
	log := logger.NewWithWriter(cfg.Logging.Level, out)

	if err := cleanup.EnsureTempDirExists(cfg.Storage.TempDir); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	if err := os.MkdirAll(cfg.Storage.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	log.Info(ctx, "Initializing components...")

	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "video-analyzer",
		ServiceVersion: handlers.Version,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			log.Warn(context.Background(), "Telemetry shutdown: %v", err)
		}
	}()
	metrics, err := observe.DefaultMetrics()
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// Transcript sources
	var captionOpts []youtube.CaptionsOption
	if cfg.YouTube.UseBrowser {
		captionOpts = append(captionOpts, youtube.WithBrowser(youtube.NewBrowser(log)))
		log.Info(ctx, "Caption tracks will be discovered with a headless browser")
	}
	captions := youtube.NewCaptions(cfg.YouTube.Languages, log, captionOpts...)
	downloader := youtube.NewDownloader(cfg.YouTube.YtDlpPath, cfg.Storage.TempDir, log)
	recognizer := transcription.NewWhisperTranscriber(transcription.Options{
		Model:      cfg.Whisper.Model,
		Python:     cfg.Whisper.Python,
		Language:   cfg.Whisper.Language,
		FFmpegPath: cfg.YouTube.FFmpegPath,
		WorkDir:    cfg.Storage.TempDir,
	}, log)
	fetcher := observe.Fetcher(transcript.NewNormalizer(captions, downloader, recognizer,
		transcript.Options{SortByStart: cfg.Transcript.SortSegments}, log), metrics)

	// Generation
	var analyzer analysis.Analyzer
	if len(cfg.Gemini.APIKeys) > 0 {
		gemini, err := analysis.NewGemini(cfg.Gemini.APIKeys, cfg.Gemini.Model, log)
		if err != nil {
			return fmt.Errorf("failed to initialize Gemini: %w", err)
		}
		analyzer = observe.Analyzer(analysis.New(gemini, analysis.Options{MaxRetries: cfg.Gemini.MaxRetries}, log), metrics)
		log.Info(ctx, "Gemini enabled (model: %s, %d key(s))", cfg.Gemini.Model, len(cfg.Gemini.APIKeys))
	} else {
		log.Warn(ctx, "GEMINI_API_KEY not set - summary and analysis disabled")
	}

	// Translation
	var translator session.SegmentTranslator
	if cfg.Translation.APIKey != "" {
		gt, err := translation.NewGoogleTranslator(ctx, cfg.Translation.APIKey)
		if err != nil {
			return fmt.Errorf("failed to initialize translator: %w", err)
		}
		translator = observe.Translator(translation.NewService(gt, cfg.Translation.BatchSize, cfg.BatchPause(), log), metrics)
		log.Info(ctx, "Translation enabled (default target: %s)", cfg.Translation.DefaultTarget)
	} else {
		log.Warn(ctx, "GOOGLE_TRANSLATE_API_KEY not set - translation disabled")
	}

	// Video metadata
	var videos handlers.VideoLookup
	if cfg.YouTube.APIKey != "" {
		mc, err := youtube.NewMetadataClient(ctx, cfg.YouTube.APIKey)
		if err != nil {
			log.Warn(ctx, "YouTube Data API not available: %v", err)
		} else {
			videos = mc
		}
	}

	// Exports
	localStorage := storage.NewLocalStorage(cfg.Storage.OutputDir)

	var uploader handlers.Uploader
	if _, err := os.Stat(cfg.GoogleDrive.CredentialsFile); err == nil {
		driveClient, err := storage.NewDriveClient(ctx,
			cfg.GoogleDrive.CredentialsFile,
			cfg.GoogleDrive.TokenFile,
			cfg.GoogleDrive.FolderName,
		)
		if err != nil {
			log.Warn(ctx, "Google Drive not available: %v", err)
			log.Info(ctx, "Exports will only be saved locally")
		} else {
			uploader = driveClient
			log.Info(ctx, "Google Drive integration enabled")
		}
	} else {
		log.Info(ctx, "Google Drive credentials not found - saving exports locally only")
	}

	// Analysis history
	db, err := storage.NewMetadataDB(cfg.Storage.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Background work
	workerPool := queue.NewWorkerPool(cfg.Workers.Count, log)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	cleanupScheduler := cleanup.NewScheduler(
		cfg.Storage.TempDir,
		cfg.Cleanup.IntervalMinutes,
		cfg.Cleanup.MaxAgeHours,
		log,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	manager := session.NewManager(ctx, session.Deps{
		Fetcher:    fetcher,
		Analyzer:   analyzer,
		Translator: translator,
		Runner:     workerPool,
		Recorder:   db,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:               "Smart Video Analyzer",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(observe.Middleware(metrics))
	app.Use(fiberlogger.New(fiberlogger.Config{Output: out}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.Register(app,
		handlers.NewAPIHandler(fetcher, analyzer, translator, cfg.Translation.DefaultTarget, log),
		handlers.NewSessionHandler(manager, localStorage, uploader, videos, cfg.Translation.DefaultTarget, log),
		handlers.NewSyncHandler(manager, cfg.PollInterval(), log),
		handlers.NewSystemHandler(db, videos, logBuffer),
	)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	addr := cfg.Addr()
	log.Info(ctx, "Server starting on %s", addr)
	log.Info(ctx, "Endpoints:")
	log.Info(ctx, "   POST /api/transcript             - Fetch a transcript")
	log.Info(ctx, "   POST /api/summary                - Summarize a transcript")
	log.Info(ctx, "   POST /api/analyze                - Chapters and key notes")
	log.Info(ctx, "   POST /api/translate              - Translate a transcript")
	log.Info(ctx, "   POST /api/session                - Start analyzing a video")
	log.Info(ctx, "   GET  /api/session                - Current session state")
	log.Info(ctx, "   POST /api/session/export         - Export the current session")
	log.Info(ctx, "   GET  /ws/sync                    - Playback sync stream")
	log.Info(ctx, "   GET  /api/history                - Past analyses")
	log.Info(ctx, "   GET  /logs                       - View server logs")
	log.Info(ctx, "   GET  /metrics                    - Prometheus metrics")
	log.Info(ctx, "   GET  /health                     - Health check")

	go func() {
		<-ctx.Done()
		log.Info(context.Background(), "Shutting down gracefully...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error(context.Background(), "Shutdown error: %v", err)
		}
	}()

	if err := app.Listen(addr); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server failed: %w", err)
	}

	if err := manager.Close(); err != nil && !errors.Is(err, session.ErrNoSession) {
		log.Warn(context.Background(), "Closing session: %v", err)
	}
	return nil
}
