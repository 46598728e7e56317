package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"folioscan/internal/config"
	"folioscan/internal/ocr"
	"folioscan/internal/port"
)

const defaultModel = "gemini-2.0-flash"

func init() {
	ocr.RegisterProvider("gemini", func(cfg *config.OCRProviderConfig, _ *ocr.TickerMapper) (port.HoldingsExtractor, error) {
		ex, err := NewExtractor(context.Background(), cfg)
		if err != nil {
			return nil, err
		}
		return ex, nil
	})
}

// Extractor implements port.HoldingsExtractor using the Gemini API.
type Extractor struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewExtractor creates a Gemini-backed extractor. cfg.BaseURL overrides the API endpoint.
func NewExtractor(ctx context.Context, cfg *config.OCRProviderConfig) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Extractor{client: client, model: model, timeout: timeout}, nil
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if !supported(input.ContentType) {
		return nil, fmt.Errorf("unsupported content type for extraction: %s", input.ContentType)
	}
	prompt := ocr.BuildHoldingsPrompt(input.Broker)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(input.ImageBytes, input.ContentType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	temperature := float32(0)
	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	})
	if err != nil {
		if isRateLimited(err) {
			return nil, ocr.NewRateLimitError("gemini", err, 0)
		}
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty response from gemini")
	}
	holdings, err := ocr.ParseHoldingsJSON(text)
	if err != nil {
		return nil, err
	}
	return &port.ExtractOutput{Holdings: holdings, ModelUsed: e.model, RawText: text}, nil
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code == http.StatusTooManyRequests
	}
	return false
}

func supported(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}
