package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

var whisperModels = []string{"tiny", "base", "small", "medium", "large", "turbo"}

// Options configures the Whisper recognizer
type Options struct {
	Model      string
	Python     string
	Language   string
	FFmpegPath string
	WorkDir    string
}

// WhisperTranscriber wraps Python's OpenAI Whisper. It satisfies transcript.Recognizer.
type WhisperTranscriber struct {
	opts   Options
	logger logger.Logger
	mu     sync.Mutex // one model load at a time
}

// NewWhisperTranscriber creates a recognizer that shells out to `python -m whisper`
func NewWhisperTranscriber(opts Options, log logger.Logger) *WhisperTranscriber {
	opts.Model = resolveModel(opts.Model)
	if opts.Python == "" {
		opts.Python = "python"
	}
	if opts.WorkDir == "" {
		opts.WorkDir = os.TempDir()
	}
	if log == nil {
		log = logger.Nop()
	}
	log.Info(context.Background(), "Whisper recognizer ready (model: %s, via %s -m whisper)", opts.Model, opts.Python)
	return &WhisperTranscriber{opts: opts, logger: log}
}

// resolveModel maps names like "ggml-small.bin" or "medium.en" onto a Whisper model
func resolveModel(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".en") {
		return lower
	}
	for _, m := range whisperModels {
		if strings.Contains(lower, m) {
			return m
		}
	}
	return "base"
}

// Recognize normalizes the audio and returns Whisper's timed segments
func (wt *WhisperTranscriber) Recognize(ctx context.Context, audioPath string) ([]types.RecognizedSegment, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	if !ValidateAudioFormat(audioPath) {
		return nil, fmt.Errorf("unsupported audio format: %s", filepath.Ext(audioPath))
	}

	outDir, err := os.MkdirTemp(wt.opts.WorkDir, "whisper_output_")
	if err != nil {
		return nil, fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	wavPath, err := NormalizeAudio(ctx, wt.opts.FFmpegPath, audioPath, outDir)
	if err != nil {
		return nil, err
	}

	absPath, err := filepath.Abs(wavPath)
	if err != nil {
		return nil, fmt.Errorf("resolve audio path: %w", err)
	}

	args := []string{"-m", "whisper", absPath,
		"--model", wt.opts.Model,
		"--output_dir", outDir,
		"--output_format", "json",
		"--fp16", "False", // CPU compatibility
	}
	if wt.opts.Language != "" {
		args = append(args, "--language", wt.opts.Language)
	}

	wt.logger.Info(ctx, "Transcribing with Whisper: %s", filepath.Base(audioPath))
	cmd := exec.CommandContext(ctx, wt.opts.Python, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w\nOutput: %s", err, strings.TrimSpace(string(output)))
	}

	baseName := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	data, err := os.ReadFile(filepath.Join(outDir, baseName+".json"))
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	segments, err := ParseWhisperOutput(data)
	if err != nil {
		return nil, err
	}
	wt.logger.Info(ctx, "Transcription completed: %d segments", len(segments))
	return segments, nil
}

// ParseWhisperOutput converts Whisper's JSON output into recognized segments
func ParseWhisperOutput(data []byte) ([]types.RecognizedSegment, error) {
	var out WhisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper JSON: %w", err)
	}

	segments := make([]types.RecognizedSegment, 0, len(out.Segments))
	for _, seg := range out.Segments {
		segments = append(segments, types.RecognizedSegment{
			Text:         strings.TrimSpace(seg.Text),
			StartSeconds: seg.Start,
			EndSeconds:   seg.End,
		})
	}
	return segments, nil
}

// WhisperOutput matches Python Whisper's JSON output format
type WhisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []WhisperSegment `json:"segments"`
}

// WhisperSegment represents a timestamped segment from Whisper
type WhisperSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
