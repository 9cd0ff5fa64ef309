package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codebuildervaibhav/video-analyzer/internal/types"
)

// Export is the content written out for a finished analysis
type Export struct {
	VideoID   string          `json:"video_id"`
	Title     string          `json:"title,omitempty"`
	Source    types.Source    `json:"source"`
	Language  string          `json:"language,omitempty"`
	Summary   string          `json:"summary,omitempty"`
	Analysis  *types.Analysis `json:"analysis,omitempty"`
	Segments  []types.Segment `json:"transcript"`
	CreatedAt time.Time       `json:"created_at"`
}

// ExportFiles lists the files produced by SaveExport
type ExportFiles struct {
	JSONPath string `json:"json_path"`
	DocxPath string `json:"docx_path"`
	DriveURL string `json:"drive_url,omitempty"`
}

// LocalStorage writes exports to the local filesystem
type LocalStorage struct {
	outputDir string
	now       func() time.Time
}

// NewLocalStorage creates a new local storage handler
func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{
		outputDir: outputDir,
		now:       time.Now,
	}
}

// SaveExport writes JSON and docx renditions under outputDir/YYYY/MM/DD/
func (ls *LocalStorage) SaveExport(exp Export) (*ExportFiles, error) {
	now := ls.now()
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = now
	}
	if exp.Segments == nil {
		exp.Segments = []types.Segment{}
	}

	dateDir := filepath.Join(ls.outputDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create date directory: %w", err)
	}

	// 20250123_143022_<video id>
	name := exp.Title
	if name == "" {
		name = exp.VideoID
	}
	baseFilename := fmt.Sprintf("%s_%s", now.Format("20060102_150405"), sanitizeFilename(name))

	files := &ExportFiles{
		JSONPath: filepath.Join(dateDir, baseFilename+".json"),
		DocxPath: filepath.Join(dateDir, baseFilename+".docx"),
	}

	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := os.WriteFile(files.JSONPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save export: %w", err)
	}

	if err := writeDocx(exp, files.DocxPath); err != nil {
		return nil, fmt.Errorf("failed to save docx: %w", err)
	}

	return files, nil
}

// sanitizeFilename replaces characters that are invalid in file names
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "_",
	)
	result := replacer.Replace(strings.TrimSpace(name))
	if result == "" {
		result = "untitled"
	}
	if r := []rune(result); len(r) > 100 {
		result = string(r[:100])
	}
	return result
}
