package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	geminiName           = "gemini"
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiDefaultModel   = "gemini-1.5-flash"
	geminiDefaultTimeout = 60 * time.Second
)

// GeminiOptions configures the Gemini backend.
type GeminiOptions struct {
	APIKey      string
	AdminModel  string
	PublicModel string
	Model       string
	BaseURL     string
	HTTPClient  *http.Client
}

// GeminiProvider talks to the Google Generative Language REST API.
type GeminiProvider struct {
	apiKey      string
	adminModel  string
	publicModel string
	sharedModel string
	baseURL     string
	client      *http.Client
}

var _ Provider = (*GeminiProvider)(nil)

func NewGeminiProvider(opts GeminiOptions) *GeminiProvider {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiProvider{
		apiKey:      strings.TrimSpace(opts.APIKey),
		adminModel:  strings.TrimSpace(opts.AdminModel),
		publicModel: strings.TrimSpace(opts.PublicModel),
		sharedModel: strings.TrimSpace(opts.Model),
		baseURL:     baseURL,
		client:      client,
	}
}

func (g *GeminiProvider) Name() string { return geminiName }

func (g *GeminiProvider) Model(mode Mode) string {
	return resolveModel(mode, g.adminModel, g.publicModel, g.sharedModel, geminiDefaultModel)
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	SystemInstruction       *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiProvider) Chat(ctx context.Context, messages []Message, opts Options) (*Reply, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingCredential)
	}
	payload := geminiRequest{
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      opts.Temperature,
			MaxOutputTokens:  opts.MaxTokens,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: msg.Content}}}
		case RoleAssistant:
			payload.Contents = append(payload.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: msg.Content}}})
		default:
			payload.Contents = append(payload.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: msg.Content}}})
		}
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.Model(opts.Mode)), url.QueryEscape(g.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, &StatusError{Provider: geminiName, Status: resp.StatusCode, Body: string(body)}
	}
	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini: no candidates in response")
	}
	text := strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return nil, errors.New("gemini: empty response text")
	}
	return &Reply{Text: text, Raw: string(body)}, nil
}
