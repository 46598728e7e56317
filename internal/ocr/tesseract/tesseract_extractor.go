package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"folioscan/internal/config"
	"folioscan/internal/ocr"
	"folioscan/internal/port"
)

func init() {
	ocr.RegisterProvider("tesseract", func(cfg *config.OCRProviderConfig, mapper *ocr.TickerMapper) (port.HoldingsExtractor, error) {
		return NewExtractor(cfg, mapper), nil
	})
}

// TextRecognizer turns image bytes into plain text.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte, languages []string) (string, error)
}

// Extractor implements port.HoldingsExtractor with local Tesseract OCR followed by
// alias substitution and broker-specific line parsing.
type Extractor struct {
	recognizer TextRecognizer
	mapper     *ocr.TickerMapper
	languages  []string
}

// NewExtractor creates a Tesseract-backed extractor. cfg.Languages is a "+"-separated list such as "kor+eng".
func NewExtractor(cfg *config.OCRProviderConfig, mapper *ocr.TickerMapper) *Extractor {
	return NewExtractorWithRecognizer(cfg, mapper, gosseractRecognizer{})
}

// NewExtractorWithRecognizer creates an extractor with a custom recognizer (for testing).
func NewExtractorWithRecognizer(cfg *config.OCRProviderConfig, mapper *ocr.TickerMapper, r TextRecognizer) *Extractor {
	var langs []string
	for _, l := range strings.Split(cfg.Languages, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		langs = []string{"kor", "eng"}
	}
	if mapper == nil {
		mapper = ocr.NewTickerMapper(nil)
	}
	return &Extractor{recognizer: r, mapper: mapper, languages: langs}
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	text, err := e.recognizer.Recognize(ctx, input.ImageBytes, e.languages)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("tesseract recognized no text")
	}

	mapped := e.mapper.MapText(text)
	holdings := ocr.TextParserFor(input.Broker).Parse(mapped)
	return &port.ExtractOutput{
		Holdings:  holdings,
		ModelUsed: "tesseract",
		RawText:   text,
	}, nil
}

type gosseractRecognizer struct{}

func (gosseractRecognizer) Recognize(ctx context.Context, image []byte, languages []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := gosseract.NewClient()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(languages...); err != nil {
		return "", fmt.Errorf("set languages: %w", err)
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}
