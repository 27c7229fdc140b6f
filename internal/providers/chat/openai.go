package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIName           = "openai"
	openAIDefaultBaseURL = "https://api.openai.com/v1"
	openAIDefaultModel   = "gpt-4o-mini"
	openAIDefaultTimeout = 60 * time.Second
)

// OpenAIOptions configures the OpenAI-compatible backend.
type OpenAIOptions struct {
	APIKey       string
	AdminModel   string
	PublicModel  string
	Model        string // shared fallback when a mode-specific model is unset
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
}

// OpenAIProvider talks to the OpenAI chat completions API, or any endpoint
// speaking the same protocol.
type OpenAIProvider struct {
	apiKey       string
	adminModel   string
	publicModel  string
	sharedModel  string
	baseURL      string
	organization string
	client       *http.Client
}

var _ Provider = (*OpenAIProvider)(nil)

func NewOpenAIProvider(opts OpenAIOptions) *OpenAIProvider {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIProvider{
		apiKey:       strings.TrimSpace(opts.APIKey),
		adminModel:   strings.TrimSpace(opts.AdminModel),
		publicModel:  strings.TrimSpace(opts.PublicModel),
		sharedModel:  strings.TrimSpace(opts.Model),
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
	}
}

func (o *OpenAIProvider) Name() string { return openAIName }

func (o *OpenAIProvider) Model(mode Mode) string {
	return resolveModel(mode, o.adminModel, o.publicModel, o.sharedModel, openAIDefaultModel)
}

type openAIChatRequest struct {
	Model          string        `json:"model"`
	Messages       []Message     `json:"messages"`
	Temperature    float64       `json:"temperature,omitempty"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *openAIFormat `json:"response_format,omitempty"`
}

type openAIFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *OpenAIProvider) Chat(ctx context.Context, messages []Message, opts Options) (*Reply, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingCredential)
	}
	payload := openAIChatRequest{
		Model:          o.Model(opts.Mode),
		Messages:       messages,
		Temperature:    opts.Temperature,
		MaxTokens:      opts.MaxTokens,
		ResponseFormat: &openAIFormat{Type: "json_object"},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", o.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", o.organization)
	}
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{Provider: openAIName, Status: resp.StatusCode, Body: string(body)}
	}
	var out openAIChatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("openai: no choices in response")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return nil, errors.New("openai: empty response text")
	}
	return &Reply{Text: text, Raw: string(body)}, nil
}
