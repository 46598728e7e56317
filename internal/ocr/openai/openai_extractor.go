package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"folioscan/internal/config"
	"folioscan/internal/ocr"
	"folioscan/internal/port"
)

func init() {
	ocr.RegisterProvider("openai", func(cfg *config.OCRProviderConfig, _ *ocr.TickerMapper) (port.HoldingsExtractor, error) {
		ex, err := NewExtractor(cfg)
		if err != nil {
			return nil, err
		}
		return ex, nil
	})
}

// Extractor implements port.HoldingsExtractor using OpenAI vision chat completions.
type Extractor struct {
	client *goopenai.Client
	model  string
}

// NewExtractor creates an OpenAI-backed extractor. cfg.BaseURL selects a compatible endpoint.
func NewExtractor(cfg *config.OCRProviderConfig) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.DefaultModel
	if model == "" {
		model = goopenai.GPT4oMini
	}
	return &Extractor{
		client: goopenai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	switch input.ContentType {
	case "image/jpeg", "image/png", "image/webp":
	default:
		return nil, fmt.Errorf("unsupported content type for extraction: %s", input.ContentType)
	}

	dataURL := "data:" + input.ContentType + ";base64," + base64.StdEncoding.EncodeToString(input.ImageBytes)
	req := goopenai.ChatCompletionRequest{
		Model: e.model,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role: goopenai.ChatMessageRoleUser,
				MultiContent: []goopenai.ChatMessagePart{
					{Type: goopenai.ChatMessagePartTypeText, Text: ocr.BuildHoldingsPrompt(input.Broker)},
					{Type: goopenai.ChatMessagePartTypeImageURL, ImageURL: &goopenai.ChatMessageImageURL{
						URL:    dataURL,
						Detail: goopenai.ImageURLDetailHigh,
					}},
				},
			},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject},
		MaxTokens:      2048,
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, ocr.NewRateLimitError("openai", err, 0)
		}
		var reqErr *goopenai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return nil, ocr.NewRateLimitError("openai", err, 0)
		}
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from openai")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	holdings, err := ocr.ParseHoldingsJSON(text)
	if err != nil {
		return nil, err
	}
	return &port.ExtractOutput{Holdings: holdings, ModelUsed: e.model, RawText: text}, nil
}
