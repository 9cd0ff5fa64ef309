package youtube

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/codebuildervaibhav/video-analyzer/internal/logger"
)

// Downloader fetches a video's audio track with yt-dlp. It satisfies transcript.AudioDownloader.
type Downloader struct {
	ytdlpPath string
	tempDir   string
	logger    logger.Logger
}

// NewDownloader creates a downloader writing into tempDir
func NewDownloader(ytdlpPath, tempDir string, log logger.Logger) *Downloader {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Downloader{
		ytdlpPath: ytdlpPath,
		tempDir:   tempDir,
		logger:    log,
	}
}

// Download writes the best audio stream as mp3 and returns its path.
// Each call uses a unique file name so concurrent downloads of one video never collide.
func (d *Downloader) Download(ctx context.Context, videoID string) (string, error) {
	if err := os.MkdirAll(d.tempDir, 0755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	base := fmt.Sprintf("%s-%s", videoID, uuid.New().String())
	template := filepath.Join(d.tempDir, base+".%(ext)s")
	outputPath := filepath.Join(d.tempDir, base+".mp3")

	d.logger.Info(ctx, "downloading audio for %s with yt-dlp", videoID)

	cmd := exec.CommandContext(ctx, d.ytdlpPath,
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", "mp3",
		"--no-playlist",
		"--quiet",
		"-o", template,
		"https://www.youtube.com/watch?v="+videoID,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		d.removePartial(base)
		return "", fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	if _, err := os.Stat(outputPath); err != nil {
		d.removePartial(base)
		return "", fmt.Errorf("yt-dlp produced no audio file: %w", err)
	}
	return outputPath, nil
}

// removePartial deletes intermediate files left by an interrupted download
func (d *Downloader) removePartial(base string) {
	matches, _ := filepath.Glob(filepath.Join(d.tempDir, base+".*"))
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			d.logger.Warn(context.Background(), "failed to remove partial download %s: %v", m, err)
		}
	}
}
