package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/thinkscotty/explainer/internal/config"
	"github.com/thinkscotty/explainer/internal/explain"
)

// Generator is the part of *genai.GenerativeModel the client needs.
type Generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client invokes a Gemini model. It implements explain.Model.
type Client struct {
	sdk     *genai.Client
	model   Generator
	name    string
	timeout time.Duration
}

// New connects to the Gemini API. A missing key returns the explain
// configuration error so callers can start without a model.
func New(ctx context.Context, cfg config.GeminiConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, explain.MissingAPIKey()
	}

	sdk, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}

	model := sdk.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	model.SafetySettings = SafetySettings()

	return &Client{sdk: sdk, model: model, name: cfg.Model, timeout: cfg.Timeout()}, nil
}

// NewWithGenerator wraps an existing generator, mainly for tests.
func NewWithGenerator(g Generator, name string) *Client {
	return &Client{model: g, name: name}
}

// SafetySettings blocks medium and higher harm probabilities in every
// category the API rates.
func SafetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockMediumAndAbove,
		})
	}
	return settings
}

func (c *Client) Name() string { return c.name }

func (c *Client) Close() error {
	if c.sdk == nil {
		return nil
	}
	return c.sdk.Close()
}

// Invoke sends the parts in order and returns the interpreted reply. A single
// attempt is made, bounded by the configured timeout. Replies the safety
// filters stopped, or rated medium or higher, come back as a blocked error.
func (c *Client) Invoke(ctx context.Context, parts []explain.Part) (*explain.ModelResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.model.GenerateContent(ctx, toGenaiParts(parts)...)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			slog.Warn("Gemini blocked content", "model", c.name, "error", err)
			return nil, explain.Blocked(err)
		}
		classified := classifyError(err)
		slog.Error("Gemini request failed", "model", c.name, "error", err)
		return nil, classified
	}

	out := Interpret(resp)
	out.Model = c.name
	if out.Blocked() {
		slog.Warn("Gemini reply blocked by safety ratings",
			"model", c.name,
			"finish_reason", out.FinishReason.String(),
		)
		return nil, explain.Blocked(nil)
	}
	slog.Debug("Gemini response",
		"model", c.name,
		"finish_reason", out.FinishReason.String(),
		"tokens", out.TokensUsed,
		"chars", len(out.Text),
	)
	return out, nil
}

func toGenaiParts(parts []explain.Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case explain.TextPart:
			out = append(out, genai.Text(v.Text))
		case explain.FilePart:
			out = append(out, genai.Blob{MIMEType: v.MIMEType, Data: v.Data})
		}
	}
	return out
}

// classifyError maps an SDK failure onto the explain service reasons.
func classifyError(err error) error {
	msg := err.Error()
	lower := strings.ToLower(msg)

	code := 0
	var apiErr *googleapi.Error
	isAPI := errors.As(err, &apiErr)
	if isAPI {
		code = apiErr.Code
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden ||
		strings.Contains(msg, "API key") || strings.Contains(msg, "401"):
		return explain.ServiceFailure(explain.ReasonAuth, err)
	case code == http.StatusTooManyRequests || strings.Contains(msg, "429") ||
		strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit"):
		return explain.ServiceFailure(explain.ReasonRateLimited, err)
	case isAPI || strings.Contains(msg, "API") || errors.Is(err, context.DeadlineExceeded):
		return explain.ServiceFailure(explain.ReasonUnavailable, err)
	default:
		return explain.ServiceFailure(explain.ReasonOther, err)
	}
}
