package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "empty config gets defaults",
			config:  Config{},
			wantErr: false,
		},
		{
			name:    "port out of range",
			config:  Config{Server: ServerConfig{Port: 70000}},
			wantErr: true,
		},
		{
			name:    "poll interval too fast",
			config:  Config{Playback: PlaybackConfig{PollIntervalMs: 10}},
			wantErr: true,
		},
		{
			name:    "poll interval too slow",
			config:  Config{Playback: PlaybackConfig{PollIntervalMs: 5000}},
			wantErr: true,
		},
		{
			name:    "negative retries",
			config:  Config{Gemini: GeminiConfig{MaxRetries: -1}},
			wantErr: true,
		},
		{
			name:    "negative batch size",
			config:  Config{Translation: TranslationConfig{BatchSize: -3}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	var cfg Config
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Addr() != "0.0.0.0:8000" {
		t.Errorf("Addr() = %q, want 0.0.0.0:8000", cfg.Addr())
	}
	if cfg.PollInterval() != 250*time.Millisecond {
		t.Errorf("PollInterval() = %v, want 250ms", cfg.PollInterval())
	}
	if cfg.Translation.BatchSize != 15 || cfg.BatchPause() != 500*time.Millisecond {
		t.Errorf("translation defaults = %d/%v, want 15/500ms", cfg.Translation.BatchSize, cfg.BatchPause())
	}
	if cfg.Translation.DefaultTarget != "vi" {
		t.Errorf("DefaultTarget = %q, want vi", cfg.Translation.DefaultTarget)
	}
	if cfg.Storage.Database != ":memory:" {
		t.Errorf("Database = %q, want :memory:", cfg.Storage.Database)
	}
	if cfg.Whisper.Model != "base" {
		t.Errorf("Whisper.Model = %q, want base", cfg.Whisper.Model)
	}
	if len(cfg.YouTube.Languages) != 1 || cfg.YouTube.Languages[0] != "en" {
		t.Errorf("YouTube.Languages = %v, want [en]", cfg.YouTube.Languages)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":            "9090",
		"CORS_ORIGINS":    "http://a.test, http://b.test ,",
		"GEMINI_API_KEYS": "k1,k2",
		"GEMINI_API_KEY":  "ignored",
		"WHISPER_MODEL":   "small",
		"TEMP_DIR":        "/tmp/audio",
	}
	var cfg Config
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if len(cfg.Gemini.APIKeys) != 2 || cfg.Gemini.APIKeys[0] != "k1" {
		t.Errorf("APIKeys = %v, want [k1 k2]", cfg.Gemini.APIKeys)
	}
	if cfg.Whisper.Model != "small" || cfg.Storage.TempDir != "/tmp/audio" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 8123
whisper:
  model: "tiny"
youtube:
  languages: ["en", "de"]
playback:
  poll_interval_ms: 200
transcript:
  sort_segments: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8123 && os.Getenv("PORT") == "" {
		t.Errorf("Port = %d, want 8123", cfg.Server.Port)
	}
	if len(cfg.YouTube.Languages) != 2 {
		t.Errorf("Languages = %v, want 2 entries", cfg.YouTube.Languages)
	}
	if cfg.PollInterval() != 200*time.Millisecond {
		t.Errorf("PollInterval() = %v, want 200ms", cfg.PollInterval())
	}
	if !cfg.Transcript.SortSegments {
		t.Error("SortSegments = false, want true")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	if _, err := Load("nonexistent.yaml"); err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
