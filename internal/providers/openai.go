package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAI is a Provider backed by an OpenAI-compatible chat completion API:
// Azure OpenAI, OpenAI, or an Ollama server.
type OpenAI struct {
	name     string
	model    string
	maxChars int
	client   *openai.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewOpenAI builds an adapter from cfg. httpClient may be nil.
func NewOpenAI(cfg *Config, httpClient *http.Client, logger *slog.Logger) (*OpenAI, error) {
	var cc openai.ClientConfig

	switch cfg.Kind {
	case KindAzure:
		cc = openai.DefaultAzureConfig(cfg.Token, cfg.BaseURL)
		cc.APIVersion = cfg.APIVersion
		deployment := cfg.Deployment
		cc.AzureModelMapperFunc = func(string) string { return deployment }
	case KindOpenAI:
		cc = openai.DefaultConfig(cfg.Token)
		if cfg.BaseURL != "" {
			cc.BaseURL = cfg.BaseURL
		}
	case KindOllama:
		cc = openai.DefaultConfig(cfg.Token)
		cc.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
		if !strings.HasSuffix(cc.BaseURL, "/v1") {
			cc.BaseURL += "/v1"
		}
	default:
		return nil, fmt.Errorf("unsupported provider kind: %s", cfg.Kind)
	}

	if httpClient != nil {
		cc.HTTPClient = httpClient
	}

	perRequest := time.Minute / time.Duration(cfg.RequestsPerMinute)

	return &OpenAI{
		name:     cfg.Name,
		model:    cfg.Model,
		maxChars: cfg.MaxInputChars,
		client:   openai.NewClientWithConfig(cc),
		limiter:  rate.NewLimiter(rate.Every(perRequest), cfg.Burst),
		logger:   logger.With("provider", cfg.Name),
	}, nil
}

func (p *OpenAI) Name() string {
	return p.name
}

// Classify sends the prompt and bounded text as a JSON-mode chat completion.
// A request over the adapter's rate budget fails immediately with ErrQuotaExceeded.
func (p *OpenAI) Classify(ctx context.Context, req Request) (*Output, error) {
	if !p.limiter.Allow() {
		return nil, Fail(p.name, ErrQuotaExceeded, errors.New("local rate limit"))
	}

	text := Truncate(req.Text, p.maxChars)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.Prompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, Fail(p.name, classify(ctx, err), err)
	}

	if len(resp.Choices) == 0 {
		return nil, Fail(p.name, ErrMalformedResponse, errors.New("no choices"))
	}

	out, err := Parse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, Fail(p.name, ErrMalformedResponse, err)
	}

	p.logger.Debug("classification received",
		"category", out.Class.Category,
		"confidence", out.Class.Confidence,
		"tokens", resp.Usage.TotalTokens,
	)

	return out, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests || isQuotaCode(apiErr.Type) || isQuotaCode(fmt.Sprint(apiErr.Code)) {
			return ErrQuotaExceeded
		}
		if apiErr.HTTPStatusCode == http.StatusRequestTimeout || apiErr.HTTPStatusCode == http.StatusGatewayTimeout {
			return ErrTimeout
		}
		return ErrNetwork
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return ErrQuotaExceeded
		}
		if reqErr.HTTPStatusCode == http.StatusGatewayTimeout {
			return ErrTimeout
		}
	}

	return ErrNetwork
}

func isQuotaCode(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "insufficient_quota") || strings.Contains(s, "rate_limit")
}
