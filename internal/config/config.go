package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	YouTube     YouTubeConfig     `yaml:"youtube"`
	Workers     WorkersConfig     `yaml:"workers"`
	Storage     StorageConfig     `yaml:"storage"`
	Cleanup     CleanupConfig     `yaml:"cleanup"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Translation TranslationConfig `yaml:"translation"`
	Playback    PlaybackConfig    `yaml:"playback"`
	Transcript  TranscriptConfig  `yaml:"transcript"`
	GoogleDrive GoogleDriveConfig `yaml:"google_drive"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type WhisperConfig struct {
	Model    string `yaml:"model"`
	Python   string `yaml:"python"`
	Language string `yaml:"language"`
}

type YouTubeConfig struct {
	Languages  []string `yaml:"languages"`
	UseBrowser bool     `yaml:"use_browser"`
	YtDlpPath  string   `yaml:"ytdlp_path"`
	FFmpegPath string   `yaml:"ffmpeg_path"`
	APIKey     string   `yaml:"api_key"`
}

type WorkersConfig struct {
	Count int `yaml:"count"`
}

type StorageConfig struct {
	TempDir   string `yaml:"temp_dir"`
	OutputDir string `yaml:"output_dir"`
	Database  string `yaml:"database"`
}

type CleanupConfig struct {
	IntervalMinutes int `yaml:"interval_minutes"`
	MaxAgeHours     int `yaml:"max_age_hours"`
}

type GeminiConfig struct {
	Model      string   `yaml:"model"`
	APIKeys    []string `yaml:"api_keys"`
	MaxRetries int      `yaml:"max_retries"`
}

type TranslationConfig struct {
	APIKey        string `yaml:"api_key"`
	BatchSize     int    `yaml:"batch_size"`
	BatchPauseMs  int    `yaml:"batch_pause_ms"`
	DefaultTarget string `yaml:"default_target"`
}

type PlaybackConfig struct {
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

type TranscriptConfig struct {
	SortSegments bool `yaml:"sort_segments"`
}

type GoogleDriveConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	FolderName      string `yaml:"folder_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML file at path, applies environment overrides and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides values with environment variables read through getenv
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := getenv("TEMP_DIR"); v != "" {
		c.Storage.TempDir = v
	}
	if v := getenv("WHISPER_MODEL"); v != "" {
		c.Whisper.Model = v
	}
	if v := getenv("GEMINI_API_KEYS"); v != "" {
		c.Gemini.APIKeys = splitList(v)
	} else if v := getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKeys = []string{v}
	}
	if v := getenv("GOOGLE_TRANSLATE_API_KEY"); v != "" {
		c.Translation.APIKey = v
	}
	if v := getenv("YOUTUBE_API_KEY"); v != "" {
		c.YouTube.APIKey = v
	}
}

// Validate fills defaults and rejects invalid values
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	if c.Playback.PollIntervalMs != 0 && (c.Playback.PollIntervalMs < 50 || c.Playback.PollIntervalMs > 2000) {
		return fmt.Errorf("playback.poll_interval_ms must be between 50 and 2000")
	}
	if c.Gemini.MaxRetries < 0 {
		return fmt.Errorf("gemini.max_retries must be >= 0")
	}
	if c.Translation.BatchSize < 0 {
		return fmt.Errorf("translation.batch_size must be >= 0")
	}

	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if c.Whisper.Model == "" {
		c.Whisper.Model = "base"
	}
	if c.Whisper.Python == "" {
		c.Whisper.Python = "python"
	}
	if len(c.YouTube.Languages) == 0 {
		c.YouTube.Languages = []string{"en"}
	}
	if c.YouTube.YtDlpPath == "" {
		c.YouTube.YtDlpPath = "yt-dlp"
	}
	if c.YouTube.FFmpegPath == "" {
		c.YouTube.FFmpegPath = "ffmpeg"
	}
	if c.Workers.Count <= 0 {
		c.Workers.Count = 2
	}
	if c.Storage.TempDir == "" {
		c.Storage.TempDir = "./temp_audio"
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "./exports"
	}
	if c.Storage.Database == "" {
		c.Storage.Database = ":memory:"
	}
	if c.Cleanup.IntervalMinutes <= 0 {
		c.Cleanup.IntervalMinutes = 30
	}
	if c.Cleanup.MaxAgeHours <= 0 {
		c.Cleanup.MaxAgeHours = 6
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.MaxRetries == 0 {
		c.Gemini.MaxRetries = 2
	}
	if c.Translation.BatchSize == 0 {
		c.Translation.BatchSize = 15
	}
	if c.Translation.BatchPauseMs == 0 {
		c.Translation.BatchPauseMs = 500
	}
	if c.Translation.DefaultTarget == "" {
		c.Translation.DefaultTarget = "vi"
	}
	if c.Playback.PollIntervalMs == 0 {
		c.Playback.PollIntervalMs = 250
	}
	if c.GoogleDrive.FolderName == "" {
		c.GoogleDrive.FolderName = "Video Analyses"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// PollInterval returns the playback sampling cadence
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Playback.PollIntervalMs) * time.Millisecond
}

// BatchPause returns the pause between translation batches
func (c *Config) BatchPause() time.Duration {
	return time.Duration(c.Translation.BatchPauseMs) * time.Millisecond
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
