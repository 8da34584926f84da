package ports

import "context"

// TokenUsage represents raw usage data reported by a model provider
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateRequest specifies one text generation call
type GenerateRequest struct {
	Prompt          string  `json:"prompt"`
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

// GenerateResult is the raw provider answer. Text may legitimately be empty
// when the provider returned a well-formed response with no content; callers
// decide how to classify that.
type GenerateResult struct {
	Text  string     `json:"text"`
	Usage TokenUsage `json:"usage"`
}

// TextGenerator sends a single prompt to a language model and returns its
// raw text answer. Implementations do not retry and do not interpret the
// answer; extraction and validation happen upstream.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	// Name identifies the provider for logs and status reporting
	Name() string
}
