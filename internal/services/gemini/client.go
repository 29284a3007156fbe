package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"lumen/internal/services"
	"lumen/internal/textgen"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
	providerName   = "gemini"
)

// Config captures the settings for the Gemini provider.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	MaxTokens      int
	Temperature    float64
}

// generator is the subset of *genai.Models the client calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client adapts the Gemini API to textgen.Provider.
type Client struct {
	cfg    Config
	models generator
}

var _ textgen.Provider = (*Client)(nil)

// NewClient builds a Gemini client backed by the genai SDK.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg = normalize(cfg)
	if cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, providerName, "new client", "api key required", nil)
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{cfg: cfg, models: client.Models}, nil
}

func newWithGenerator(cfg Config, models generator) *Client {
	return &Client{cfg: normalize(cfg), models: models}
}

func normalize(cfg Config) Config {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return cfg
}

// Name identifies the provider.
func (c *Client) Name() string { return providerName }

// Complete generates content for req. Blocked or empty candidates are soft
// failures.
func (c *Client) Complete(ctx context.Context, req textgen.Request) (textgen.Response, error) {
	model := c.cfg.Model
	if m := strings.TrimSpace(req.Model); m != "" && strings.HasPrefix(m, "gemini") {
		model = m
	}
	resp := textgen.Response{Provider: providerName, Model: model}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, msg := range req.Messages {
		text := strings.TrimSpace(msg.Content)
		if text == "" {
			continue
		}
		role := genai.RoleUser
		if msg.Role == textgen.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(text, genai.Role(role)))
	}
	if len(contents) == 0 {
		return resp, services.Wrap(services.ErrValidation, providerName, "complete", "at least one message required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	result, err := c.models.GenerateContent(ctx, model, contents, c.generateConfig(req))
	if err != nil {
		return resp, fmt.Errorf("gemini: generate content: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		resp.Error = "gemini: no candidates returned"
		return resp, nil
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		resp.Error = fmt.Sprintf("gemini: empty content (finish_reason=%q)", result.Candidates[0].FinishReason)
		return resp, nil
	}
	if result.ModelVersion != "" {
		resp.Model = result.ModelVersion
	}
	resp.Success = true
	resp.Text = text
	return resp, nil
}

func (c *Client) generateConfig(req textgen.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = c.cfg.Temperature
	}
	if temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(temperature))
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}
	return cfg
}

func (c *Client) timeout() time.Duration {
	if c.cfg.TimeoutSeconds > 0 {
		return time.Duration(c.cfg.TimeoutSeconds) * time.Second
	}
	return defaultTimeout
}
