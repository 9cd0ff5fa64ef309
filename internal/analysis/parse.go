package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// extractJSONObject strips markdown fences and returns the outermost JSON object
func extractJSONObject(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", fmt.Errorf("%w: empty content", ErrMalformedOutput)
	}

	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}

	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1], nil
	}

	return "", fmt.Errorf("%w: no JSON object in %q", ErrMalformedOutput, truncate(t, 200))
}

// parseAnalysis decodes model output, requiring both chapters and key_notes
func parseAnalysis(raw string) (*types.Analysis, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Chapters *[]types.Chapter `json:"chapters"`
		KeyNotes *[]types.KeyNote `json:"key_notes"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if payload.Chapters == nil || payload.KeyNotes == nil {
		return nil, fmt.Errorf("%w: chapters and key_notes are required", ErrMalformedOutput)
	}

	return &types.Analysis{
		Chapters: *payload.Chapters,
		KeyNotes: *payload.KeyNotes,
	}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
