package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tablecast/ports"
)

func TestGeminiGenerateSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Expected decodable request body, got error: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "{\"columnMapping\":{}}"}]}}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 8, "totalTokenCount": 20}
		}`))
	}))
	defer server.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: server.URL})
	res, err := client.Generate(context.Background(), ports.GenerateRequest{
		Prompt:          "map these columns",
		Temperature:     0.1,
		MaxOutputTokens: 2048,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotPath != "/models/"+DefaultModel+":generateContent" {
		t.Errorf("Expected default model endpoint, got %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("Expected API key in query string, got %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "map these columns" {
		t.Errorf("Expected prompt in request contents, got %+v", gotBody.Contents)
	}
	if gotBody.GenerationConfig.Temperature != 0.1 || gotBody.GenerationConfig.MaxOutputTokens != 2048 {
		t.Errorf("Expected generation config forwarded, got %+v", gotBody.GenerationConfig)
	}
	if res.Text != `{"columnMapping":{}}` {
		t.Errorf("Expected first candidate text, got %q", res.Text)
	}
	if res.Usage != (ports.TokenUsage{PromptTokens: 12, CompletionTokens: 8, TotalTokens: 20}) {
		t.Errorf("Expected usage from usageMetadata, got %+v", res.Usage)
	}
}

func TestGeminiGenerateErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "Resource has been exhausted", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), ports.GenerateRequest{Prompt: "p"})
	if err == nil {
		t.Fatal("Expected an error for a 429 response")
	}
	if !strings.Contains(err.Error(), "gemini http 429") {
		t.Errorf("Expected status code in error, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "Resource has been exhausted") {
		t.Errorf("Expected provider error message, got %q", err.Error())
	}
}

func TestGeminiGenerateErrorFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream error</html>"))
	}))
	defer server.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), ports.GenerateRequest{Prompt: "p"})
	if err == nil {
		t.Fatal("Expected an error for a 502 response")
	}
	if !strings.Contains(err.Error(), http.StatusText(http.StatusBadGateway)) {
		t.Errorf("Expected status text fallback, got %q", err.Error())
	}
}

// A 2xx answer with no candidates is not a transport failure: the client
// hands back empty text and lets the caller classify it
func TestGeminiGenerateNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": [], "usageMetadata": {"promptTokenCount": 5, "totalTokenCount": 5}}`))
	}))
	defer server.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: server.URL})
	res, err := client.Generate(context.Background(), ports.GenerateRequest{Prompt: "p"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.Text != "" {
		t.Errorf("Expected empty text, got %q", res.Text)
	}
	if res.Usage.PromptTokens != 5 {
		t.Errorf("Expected usage still reported, got %+v", res.Usage)
	}
}

func TestGeminiGenerateContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewGeminiClient(GeminiConfig{APIKey: "k", BaseURL: server.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, ports.GenerateRequest{Prompt: "p"})
	if err == nil {
		t.Fatal("Expected an error when the context is already cancelled")
	}
}

func TestGeminiConfigDefaults(t *testing.T) {
	client := NewGeminiClient(GeminiConfig{APIKey: "k"})
	if client.cfg.BaseURL != DefaultBaseURL {
		t.Errorf("Expected default base URL, got %q", client.cfg.BaseURL)
	}
	if client.cfg.Model != DefaultModel {
		t.Errorf("Expected default model, got %q", client.cfg.Model)
	}
	if client.cfg.Timeout != DefaultTimeout {
		t.Errorf("Expected default timeout, got %v", client.cfg.Timeout)
	}
	if client.Name() != "gemini" {
		t.Errorf("Expected provider name gemini, got %q", client.Name())
	}
}
