// Package usage meters inference calls and token spend for the current
// process. Counters live in memory only; a restart zeroes them.
package usage

import (
	"log"
	"sync"

	"tablecast/ports"
)

// Meter accumulates token usage reported by the provider, keyed by the
// operation that spent it. Safe for concurrent use.
type Meter struct {
	mu    sync.Mutex
	total Totals
	byOp  map[string]Totals
}

// NewMeter creates an empty meter
func NewMeter() *Meter {
	return &Meter{byOp: make(map[string]Totals)}
}

// Record adds one call's usage under operation. Negative token counts are
// provider glitches and are logged and dropped rather than failing the call.
func (m *Meter) Record(operation string, u ports.TokenUsage) {
	if u.PromptTokens < 0 || u.CompletionTokens < 0 || u.TotalTokens < 0 {
		log.Printf("[UsageMeter] Dropping invalid token counts for %s: %+v", operation, u)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.total.add(u)
	op := m.byOp[operation]
	op.add(u)
	m.byOp[operation] = op
}

// Snapshot returns a copy of the current counters
func (m *Meter) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	byOp := make(map[string]Totals, len(m.byOp))
	for op, t := range m.byOp {
		byOp[op] = t
	}
	return Snapshot{Totals: m.total, ByOperation: byOp}
}

func (t *Totals) add(u ports.TokenUsage) {
	t.Calls++
	t.PromptTokens += u.PromptTokens
	t.CompletionTokens += u.CompletionTokens
	t.TotalTokens += u.TotalTokens
}
