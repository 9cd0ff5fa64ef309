package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/video-analyzer/internal/transcript"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
	"github.com/codebuildervaibhav/video-analyzer/internal/youtube"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// HistoryLister reads the analysis log
type HistoryLister interface {
	ListAnalyses(ctx context.Context, limit int) ([]types.AnalysisRecord, error)
}

// LogSource exposes recent server log lines
type LogSource interface {
	Lines() []string
}

// SystemHandler serves health, logs, history and video metadata
type SystemHandler struct {
	history HistoryLister
	videos  VideoLookup
	logs    LogSource
}

// NewSystemHandler creates the handler. videos may be nil.
func NewSystemHandler(history HistoryLister, videos VideoLookup, logs LogSource) *SystemHandler {
	return &SystemHandler{
		history: history,
		videos:  videos,
		logs:    logs,
	}
}

// Health is the liveness check
func (h *SystemHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"version": Version,
	})
}

// Logs returns the buffered server log
func (h *SystemHandler) Logs(c *fiber.Ctx) error {
	lines := []string{}
	if h.logs != nil {
		lines = h.logs.Lines()
	}
	return c.JSON(fiber.Map{"logs": lines})
}

// History lists recent analyses, newest first
func (h *SystemHandler) History(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		return errorResponse(c, fiber.StatusBadRequest,
			fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit), "ERR_INVALID_LIMIT")
	}

	records, err := h.history.ListAnalyses(c.UserContext(), limit)
	if err != nil {
		return respondError(c, err)
	}
	if records == nil {
		records = []types.AnalysisRecord{}
	}
	return c.JSON(fiber.Map{"analyses": records})
}

// Video returns title, channel and duration for a video
func (h *SystemHandler) Video(c *fiber.Ctx) error {
	if h.videos == nil {
		return respondError(c, fmt.Errorf("%w: set YOUTUBE_API_KEY to enable video metadata", errNotConfigured))
	}

	videoID, err := transcript.ExtractVideoID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	info, err := h.videos.Video(c.UserContext(), videoID)
	if err != nil {
		if errors.Is(err, youtube.ErrVideoNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "Video not found", "ERR_VIDEO_NOT_FOUND")
		}
		return respondError(c, err)
	}
	return c.JSON(info)
}
