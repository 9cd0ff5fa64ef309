package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
	"github.com/codebuildervaibhav/video-analyzer/internal/session"
	"github.com/codebuildervaibhav/video-analyzer/internal/storage"
	"github.com/codebuildervaibhav/video-analyzer/internal/transcript"
	"github.com/codebuildervaibhav/video-analyzer/internal/translation"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// SessionManager is the session surface the HTTP layer drives
type SessionManager interface {
	Start(videoID string) (session.Snapshot, error)
	Snapshot() (session.Snapshot, error)
	Handle() (session.Handle, error)
	RetryAnalysis() (session.Snapshot, error)
	Translate(ctx context.Context, target string) (session.Snapshot, error)
	Close() error
}

// Exporter writes a finished analysis to disk
type Exporter interface {
	SaveExport(exp storage.Export) (*storage.ExportFiles, error)
}

// Uploader publishes exported files and returns a link to them
type Uploader interface {
	Upload(ctx context.Context, paths ...string) (string, error)
}

// VideoLookup resolves display metadata for a video
type VideoLookup interface {
	Video(ctx context.Context, videoID string) (*types.VideoInfo, error)
}

const uploadAttempts = 3

// SessionHandler serves the single active analysis session
type SessionHandler struct {
	manager       SessionManager
	exporter      Exporter
	uploader      Uploader
	videos        VideoLookup
	defaultTarget string
	retryDelay    time.Duration
	logger        logger.Logger
}

// NewSessionHandler creates the handler. uploader and videos may be nil.
func NewSessionHandler(manager SessionManager, exporter Exporter, uploader Uploader, videos VideoLookup, defaultTarget string, log logger.Logger) *SessionHandler {
	if defaultTarget == "" {
		defaultTarget = "vi"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SessionHandler{
		manager:       manager,
		exporter:      exporter,
		uploader:      uploader,
		videos:        videos,
		defaultTarget: defaultTarget,
		retryDelay:    time.Second,
		logger:        log,
	}
}

// TranslateSessionRequest selects the target language for the session transcript
type TranslateSessionRequest struct {
	TargetLang string `json:"target_lang"`
}

// ExportRequest controls where an export goes
type ExportRequest struct {
	Upload bool `json:"upload"`
}

// Start begins a new analysis, superseding the current one
func (h *SessionHandler) Start(c *fiber.Ctx) error {
	var req VideoRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "ERR_INVALID_BODY")
	}

	videoID, err := transcript.ExtractVideoID(req.VideoURL)
	if err != nil {
		return respondError(c, err)
	}

	snap, err := h.manager.Start(videoID)
	if err != nil {
		h.logger.Error(c.UserContext(), "Failed to start session for %s: %v", videoID, err)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(snap)
}

// Get returns the current session snapshot
func (h *SessionHandler) Get(c *fiber.Ctx) error {
	snap, err := h.manager.Snapshot()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snap)
}

// RetryAnalysis reruns summary and analysis generation
func (h *SessionHandler) RetryAnalysis(c *fiber.Ctx) error {
	snap, err := h.manager.RetryAnalysis()
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(snap)
}

// Translate replaces the session transcript with a translation
func (h *SessionHandler) Translate(c *fiber.Ctx) error {
	var req TranslateSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "ERR_INVALID_BODY")
		}
	}
	if req.TargetLang == "" {
		req.TargetLang = h.defaultTarget
	}
	target, err := translation.ResolveLanguage(req.TargetLang)
	if err != nil {
		return respondError(c, err)
	}

	snap, err := h.manager.Translate(c.UserContext(), target)
	if err != nil {
		h.logger.Warn(c.UserContext(), "Session translation to %s failed: %v", target, err)
		return respondError(c, err)
	}
	return c.JSON(snap)
}

// Export saves the current session locally and optionally uploads it
func (h *SessionHandler) Export(c *fiber.Ctx) error {
	var req ExportRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "ERR_INVALID_BODY")
		}
	}

	snap, err := h.manager.Snapshot()
	if err != nil {
		return respondError(c, err)
	}
	if len(snap.Transcript) == 0 {
		return respondError(c, session.ErrNotReady)
	}

	ctx := c.UserContext()
	exp := storage.Export{
		VideoID:  snap.VideoID,
		Source:   snap.Source,
		Language: snap.Language,
		Summary:  snap.Summary,
		Analysis: snap.Analysis,
		Segments: snap.Transcript,
	}
	if h.videos != nil {
		if info, err := h.videos.Video(ctx, snap.VideoID); err == nil {
			exp.Title = info.Title
		} else {
			h.logger.Warn(ctx, "No title for %s: %v", snap.VideoID, err)
		}
	}

	files, err := h.exporter.SaveExport(exp)
	if err != nil {
		h.logger.Error(ctx, "Export failed for %s: %v", snap.VideoID, err)
		return respondError(c, err)
	}
	h.logger.Info(ctx, "Exported %s to %s", snap.VideoID, files.JSONPath)

	if req.Upload {
		if h.uploader == nil {
			return respondError(c, fmt.Errorf("%w: Google Drive is not authorized", errNotConfigured))
		}
		url, err := h.upload(ctx, files.JSONPath, files.DocxPath)
		if err != nil {
			return respondError(c, err)
		}
		files.DriveURL = url
	}

	return c.JSON(files)
}

// upload retries with quadratic backoff
func (h *SessionHandler) upload(ctx context.Context, paths ...string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= uploadAttempts; attempt++ {
		url, err := h.uploader.Upload(ctx, paths...)
		if err == nil {
			return url, nil
		}
		lastErr = err
		h.logger.Warn(ctx, "Drive upload attempt %d failed: %v", attempt, err)

		if attempt < uploadAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt*attempt) * h.retryDelay):
			}
		}
	}
	return "", fmt.Errorf("upload after %d attempts: %w", uploadAttempts, lastErr)
}

// Close discards the current session
func (h *SessionHandler) Close(c *fiber.Ctx) error {
	if err := h.manager.Close(); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
