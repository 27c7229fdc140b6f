package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiModelResolution(t *testing.T) {
	p := NewGeminiProvider(GeminiOptions{AdminModel: "gemini-1.5-pro"})
	if got := p.Model(ModeAdmin); got != "gemini-1.5-pro" {
		t.Fatalf("admin model = %q", got)
	}
	if got := p.Model(ModePublic); got != "gemini-1.5-flash" {
		t.Fatalf("public model = %q, want hard default", got)
	}
}

func TestGeminiChat(t *testing.T) {
	var gotReq geminiRequest
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("key") != "g-key" {
			t.Errorf("api key not passed")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"role": "model", "parts": []map[string]any{{"text": `{"comments":[]}`}}}},
			},
		})
	}))
	defer srv.Close()

	p := NewGeminiProvider(GeminiOptions{APIKey: "g-key", Model: "gemini-1.5-flash", BaseURL: srv.URL})
	reply, err := p.Chat(context.Background(),
		[]Message{{Role: RoleSystem, Content: "rules"}, {Role: RoleUser, Content: "go"}},
		Options{Temperature: 0.5, MaxTokens: 512, Mode: ModePublic})
	if err != nil {
		t.Fatal(err)
	}
	if reply.Text != `{"comments":[]}` {
		t.Fatalf("text = %q", reply.Text)
	}
	if !strings.Contains(gotPath, "gemini-1.5-flash") {
		t.Fatalf("path = %q, want model segment", gotPath)
	}
	if gotReq.SystemInstruction == nil || gotReq.SystemInstruction.Parts[0].Text != "rules" {
		t.Fatalf("system instruction = %+v", gotReq.SystemInstruction)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Role != "user" {
		t.Fatalf("contents = %+v", gotReq.Contents)
	}
}

func TestGeminiChatErrors(t *testing.T) {
	p := NewGeminiProvider(GeminiOptions{})
	_, err := p.Chat(context.Background(), nil, Options{})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad model"))
	}))
	defer srv.Close()
	p = NewGeminiProvider(GeminiOptions{APIKey: "k", BaseURL: srv.URL})
	_, err = p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400 StatusError", err)
	}
}
