package inference

import (
	"context"

	"tablecast/ports"
)

// Mock is a canned text generator for tests and wiring checks
type Mock struct {
	Text  string           // Set this to the text the mock should answer with
	Err   error            // Set this to simulate a transport failure
	Usage ports.TokenUsage // Optional canned usage numbers

	// LastPrompt records the most recent prompt, for assertions
	LastPrompt string
	Calls      int
}

func (m *Mock) Name() string {
	return "mock"
}

func (m *Mock) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResult, error) {
	m.LastPrompt = req.Prompt
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return &ports.GenerateResult{Text: m.Text, Usage: m.Usage}, nil
}
