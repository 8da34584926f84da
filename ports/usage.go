package ports

// UsageRecorder accumulates token usage reported by a model provider,
// keyed by the operation that spent it
type UsageRecorder interface {
	Record(operation string, usage TokenUsage)
}
