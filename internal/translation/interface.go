package translation

import (
	"context"
	"errors"
)

var (
	// ErrUnsupportedLanguage is returned for targets outside SupportedLanguages
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrEmptyText is returned when there is nothing to translate or detect
	ErrEmptyText = errors.New("text is empty")
)

// Translator is a machine translation backend
type Translator interface {
	// Translate returns one translation per input text, in order
	Translate(ctx context.Context, texts []string, target string) ([]string, error)
	Detect(ctx context.Context, text string) (*Detection, error)
}

// Detection is a detected source language
type Detection struct {
	Lang         string  `json:"lang"`
	Confidence   float64 `json:"confidence"`
	LanguageName string  `json:"language_name"`
}
