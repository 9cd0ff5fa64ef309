package translation

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"
)

// apiCodes maps table codes onto the codes the Translation API expects
var apiCodes = map[string]string{
	"zh-cn": "zh-CN",
	"zh-tw": "zh-TW",
}

// GoogleTranslator calls the Cloud Translation v2 API
type GoogleTranslator struct {
	svc *translate.Service
}

// NewGoogleTranslator creates a translator authenticated with an API key
func NewGoogleTranslator(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GoogleTranslator, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := translate.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create translate service: %w", err)
	}
	return &GoogleTranslator{svc: svc}, nil
}

func (g *GoogleTranslator) Translate(ctx context.Context, texts []string, target string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}

	resp, err := g.svc.Translations.List(texts, apiCode(target)).Format("text").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}
	if len(resp.Translations) != len(texts) {
		return nil, fmt.Errorf("translate: got %d translations for %d texts", len(resp.Translations), len(texts))
	}

	out := make([]string, len(texts))
	for i, tr := range resp.Translations {
		out[i] = tr.TranslatedText
	}
	return out, nil
}

func (g *GoogleTranslator) Detect(ctx context.Context, text string) (*Detection, error) {
	resp, err := g.svc.Detections.List([]string{text}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("detect language: %w", err)
	}
	if len(resp.Detections) == 0 || len(resp.Detections[0]) == 0 {
		return nil, fmt.Errorf("detect language: no result")
	}

	best := resp.Detections[0][0]
	lang := strings.ToLower(best.Language)
	return &Detection{
		Lang:         lang,
		Confidence:   best.Confidence,
		LanguageName: LanguageName(lang),
	}, nil
}

func apiCode(code string) string {
	code = strings.ToLower(code)
	if c, ok := apiCodes[code]; ok {
		return c
	}
	return code
}
