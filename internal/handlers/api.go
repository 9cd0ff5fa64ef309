package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/video-analyzer/internal/analysis"
	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
	"github.com/codebuildervaibhav/video-analyzer/internal/session"
	"github.com/codebuildervaibhav/video-analyzer/internal/transcript"
	"github.com/codebuildervaibhav/video-analyzer/internal/translation"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// Version is reported by the status endpoints
const Version = "1.0.0"

// APIHandler serves the stateless transcript, generation and translation endpoints
type APIHandler struct {
	fetcher       transcript.Fetcher
	analyzer      analysis.Analyzer
	translator    session.SegmentTranslator
	defaultTarget string
	logger        logger.Logger
}

// NewAPIHandler creates the handler. analyzer and translator may be nil when unconfigured.
func NewAPIHandler(fetcher transcript.Fetcher, analyzer analysis.Analyzer, translator session.SegmentTranslator, defaultTarget string, log logger.Logger) *APIHandler {
	if defaultTarget == "" {
		defaultTarget = "vi"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &APIHandler{
		fetcher:       fetcher,
		analyzer:      analyzer,
		translator:    translator,
		defaultTarget: defaultTarget,
		logger:        log,
	}
}

// VideoRequest carries a video URL or bare ID
type VideoRequest struct {
	VideoURL string `json:"video_url"`
}

// TranscriptRequest carries segments for generation endpoints
type TranscriptRequest struct {
	Transcript []types.Segment `json:"transcript"`
}

// TranslationRequest carries segments and a target language
type TranslationRequest struct {
	Transcript []types.Segment `json:"transcript"`
	TargetLang string          `json:"target_lang"`
}

// Root reports service status
func (h *APIHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "online",
		"service": "Smart Video Analyzer API",
		"version": Version,
	})
}

// Transcript fetches a normalized transcript. Failure is reported in the body with status 200.
func (h *APIHandler) Transcript(c *fiber.Ctx) error {
	var req VideoRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "ERR_INVALID_BODY")
	}

	videoID, err := transcript.ExtractVideoID(req.VideoURL)
	if err != nil {
		return respondError(c, err)
	}

	h.logger.Info(c.UserContext(), "Transcript request for video: %s", videoID)
	return c.JSON(h.fetcher.Fetch(c.UserContext(), videoID))
}

// Summary generates a prose summary
func (h *APIHandler) Summary(c *fiber.Ctx) error {
	if h.analyzer == nil {
		return respondError(c, fmt.Errorf("%w: set GEMINI_API_KEY to enable summaries", errNotConfigured))
	}

	var req TranscriptRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "ERR_INVALID_BODY")
	}

	summary, err := h.analyzer.Summarize(c.UserContext(), req.Transcript)
	if err != nil {
		h.logger.Error(c.UserContext(), "Summary endpoint error: %v", err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"summary": summary,
		"success": true,
	})
}

// Analyze generates chapters and key notes
func (h *APIHandler) Analyze(c *fiber.Ctx) error {
	if h.analyzer == nil {
		return respondError(c, fmt.Errorf("%w: set GEMINI_API_KEY to enable analysis", errNotConfigured))
	}

	var req TranscriptRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "ERR_INVALID_BODY")
	}

	result, err := h.analyzer.Analyze(c.UserContext(), req.Transcript)
	if err != nil {
		h.logger.Error(c.UserContext(), "Analysis endpoint error: %v", err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"chapters":  result.Chapters,
		"key_notes": result.KeyNotes,
		"success":   true,
	})
}

// Translate returns a translated copy of the posted transcript
func (h *APIHandler) Translate(c *fiber.Ctx) error {
	if h.translator == nil {
		return respondError(c, fmt.Errorf("%w: set GOOGLE_TRANSLATE_API_KEY to enable translation", errNotConfigured))
	}

	var req TranslationRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", "ERR_INVALID_BODY")
	}
	if len(req.Transcript) == 0 {
		return respondError(c, analysis.ErrEmptyTranscript)
	}
	if req.TargetLang == "" {
		req.TargetLang = h.defaultTarget
	}
	target, err := translation.ResolveLanguage(req.TargetLang)
	if err != nil {
		return respondError(c, err)
	}

	translated, err := h.translator.TranslateSegments(c.UserContext(), req.Transcript, target)
	if err != nil {
		h.logger.Error(c.UserContext(), "Translation endpoint error: %v", err)
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"translated_transcript": translated,
		"success":               true,
	})
}

// Languages lists supported translation targets
func (h *APIHandler) Languages(c *fiber.Ctx) error {
	langs := make(map[string]string)
	for _, l := range translation.SupportedLanguages() {
		langs[l.Code] = l.Name
	}
	return c.JSON(fiber.Map{"languages": langs})
}
