// Package offline answers inference prompts without a network. It stands in
// for the remote model in air-gapped runs and tests: the mapping it derives
// is a plain name-similarity match, wrapped in prose around an embedded JSON
// object so callers exercise the same extraction path a live provider needs.
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tablecast/ai"
	"tablecast/domain/table"
	"tablecast/internal"
	"tablecast/ports"

	"gonum.org/v1/gonum/floats"
)

// similarityFloor is the bigram-cosine score below which a candidate target
// is reported as unmatched instead of guessed
const similarityFloor = 0.25

// Matcher implements ports.TextGenerator by reading the table shape back out
// of the rendered prompt and matching target names against source headers:
// exact match first, then case-insensitive, then character-bigram cosine.
type Matcher struct {
	logger *internal.Logger // per-pair match tracing, DEBUG only
}

// NewMatcher creates an offline matcher
func NewMatcher() *Matcher {
	return &Matcher{logger: internal.NewDefaultLogger("Offline")}
}

// Name identifies the provider
func (m *Matcher) Name() string {
	return "offline"
}

// Generate answers a mapping or template prompt locally. The returned text
// deliberately wraps its JSON object in prose.
func (m *Matcher) Generate(ctx context.Context, req ports.GenerateRequest) (*ports.GenerateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.Contains(req.Prompt, `"columnMapping"`) {
		return m.answerMapping(req.Prompt)
	}
	return m.answerTemplate(req.Prompt)
}

func (m *Matcher) answerMapping(prompt string) (*ports.GenerateResult, error) {
	headers := splitHeaderLine(promptLine(prompt, ai.PromptSourceColumnsPrefix))
	description := promptLine(prompt, ai.PromptDescriptionPrefix)
	targets := splitCandidates(description)

	var mapping table.ColumnMapping
	var notes []string
	for _, target := range targets {
		source, score := bestHeader(target, headers)
		if source == "" {
			notes = append(notes, fmt.Sprintf("No source column resembles %q; it was left out of the mapping.", target))
			continue
		}
		m.logger.Debug("Matched %q -> %q (score=%.2f)", target, source, score)
		mapping.Set(target, source)
	}

	if len(targets) == 0 {
		notes = append(notes, "Describe the output columns by name, separated by commas, so they can be matched offline.")
	}
	notes = append(notes, "Mapping derived offline by column-name similarity; no AI provider was called.")

	payload, err := json.Marshal(table.MappingResult{Mapping: mapping, Suggestions: notes})
	if err != nil {
		return nil, fmt.Errorf("marshal offline mapping: %w", err)
	}
	text := "Here is the mapping derived by name matching:\n" + string(payload) + "\nReview the pairs before transforming."
	return &ports.GenerateResult{Text: text}, nil
}

func (m *Matcher) answerTemplate(prompt string) (*ports.GenerateResult, error) {
	description := promptLine(prompt, ai.PromptDescriptionPrefix)
	headers := splitCandidates(description)
	if len(headers) == 0 {
		headers = []string{"Name", "Category", "Value"}
	}

	sampleRow := make([]string, len(headers))
	for i, h := range headers {
		sampleRow[i] = exampleValue(h)
	}

	payload, err := json.Marshal(struct {
		Headers   []string `json:"headers"`
		SampleRow []string `json:"sampleRow"`
	}{Headers: headers, SampleRow: sampleRow})
	if err != nil {
		return nil, fmt.Errorf("marshal offline template: %w", err)
	}
	text := "Here is a schema proposal:\n" + string(payload)
	return &ports.GenerateResult{Text: text}, nil
}

// promptLine returns the remainder of the first prompt line starting with
// prefix, or "" when the prompt has no such line
func promptLine(prompt, prefix string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}

// splitHeaderLine splits the rendered header list back into names
func splitHeaderLine(line string) []string {
	if line == "" {
		return nil
	}
	parts := strings.Split(line, ", ")
	headers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			headers = append(headers, p)
		}
	}
	return headers
}

// splitCandidates pulls likely column names out of a free-text description:
// comma, semicolon, pipe, and newline separated tokens, quotes stripped.
// A leading "columns:"-style label on the first token is dropped.
func splitCandidates(description string) []string {
	const maxCandidates = 16

	fields := strings.FieldsFunc(description, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '\n'
	})

	candidates := make([]string, 0, len(fields))
	for i, f := range fields {
		if i == 0 {
			if _, after, ok := strings.Cut(f, ":"); ok {
				f = after
			}
		}
		f = strings.Trim(strings.TrimSpace(f), `"'`+"`")
		if f == "" || len([]rune(f)) > 64 {
			continue
		}
		candidates = append(candidates, f)
		if len(candidates) == maxCandidates {
			break
		}
	}
	return candidates
}

// bestHeader picks the source header for one target name. Exact equality
// wins outright, then case-insensitive equality, then the highest bigram
// cosine at or above similarityFloor. Returns "" when nothing qualifies.
func bestHeader(target string, headers []string) (string, float64) {
	for _, h := range headers {
		if h == target {
			return h, 1
		}
	}
	for _, h := range headers {
		if strings.EqualFold(h, target) {
			return h, 1
		}
	}

	best, bestScore := "", 0.0
	for _, h := range headers {
		if score := bigramCosine(target, h); score > bestScore {
			best, bestScore = h, score
		}
	}
	if bestScore < similarityFloor {
		return "", bestScore
	}
	return best, bestScore
}

// bigramCosine scores two names by the cosine of their character-bigram
// count vectors, case-folded. Single-rune names fall back to unigrams.
func bigramCosine(a, b string) float64 {
	ca := bigramCounts(a)
	cb := bigramCounts(b)
	if len(ca) == 0 || len(cb) == 0 {
		return 0
	}

	keys := make([]string, 0, len(ca)+len(cb))
	seen := make(map[string]bool, len(ca)+len(cb))
	for k := range ca {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range cb {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	va := make([]float64, len(keys))
	vb := make([]float64, len(keys))
	for i, k := range keys {
		va[i] = float64(ca[k])
		vb[i] = float64(cb[k])
	}

	na := floats.Norm(va, 2)
	nb := floats.Norm(vb, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(va, vb) / (na * nb)
}

func bigramCounts(s string) map[string]int {
	runes := []rune(strings.ToLower(strings.TrimSpace(s)))
	counts := make(map[string]int)
	if len(runes) == 1 {
		counts[string(runes)] = 1
		return counts
	}
	for i := 0; i+1 < len(runes); i++ {
		counts[string(runes[i:i+2])]++
	}
	return counts
}

// exampleValue fabricates a plausible sample cell for a proposed header
func exampleValue(header string) string {
	h := strings.ToLower(header)
	switch {
	case strings.Contains(h, "date") || strings.Contains(h, "날짜"):
		return "2024-01-15"
	case strings.Contains(h, "email") || strings.Contains(h, "mail"):
		return "user@example.com"
	case strings.Contains(h, "phone") || strings.Contains(h, "전화"):
		return "010-1234-5678"
	case strings.Contains(h, "name") || strings.Contains(h, "이름") || strings.Contains(h, "성명"):
		return "Kim Chulsoo"
	case strings.Contains(h, "count") || strings.Contains(h, "qty") || strings.Contains(h, "quantity"):
		return "3"
	case strings.Contains(h, "price") || strings.Contains(h, "amount") || strings.Contains(h, "금액"):
		return "19900"
	default:
		return "Sample " + header
	}
}
