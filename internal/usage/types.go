package usage

// Totals is an accumulated view of inference spend
type Totals struct {
	Calls            int `json:"calls"`
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Snapshot is a point-in-time copy of the meter, overall and per operation
type Snapshot struct {
	Totals      Totals            `json:"totals"`
	ByOperation map[string]Totals `json:"by_operation"`
}
