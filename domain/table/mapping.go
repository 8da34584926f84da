package table

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MappingPair is one target column and the source column that feeds it
type MappingPair struct {
	Target string `json:"target"`
	Source string `json:"source"`
}

// ColumnMapping is an insertion-ordered target→source column mapping.
// The order of targets fixes the column order of the transformed output,
// so the type preserves the order mapping entries were first set (the order
// keys appeared in the model's JSON answer) rather than using a plain map.
type ColumnMapping struct {
	pairs []MappingPair
	index map[string]int
}

// NewColumnMapping builds a mapping from ordered pairs, applying the same
// duplicate rule as JSON decoding: first occurrence keeps its position,
// last occurrence keeps its value.
func NewColumnMapping(pairs ...MappingPair) ColumnMapping {
	var m ColumnMapping
	for _, p := range pairs {
		m.Set(p.Target, p.Source)
	}
	return m
}

// Set adds target→source, or updates source in place when target is already
// present. The target keeps its original position on update.
func (m *ColumnMapping) Set(target, source string) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[target]; ok {
		m.pairs[i].Source = source
		return
	}
	m.index[target] = len(m.pairs)
	m.pairs = append(m.pairs, MappingPair{Target: target, Source: source})
}

// Source returns the source column mapped to target
func (m ColumnMapping) Source(target string) (string, bool) {
	i, ok := m.index[target]
	if !ok {
		return "", false
	}
	return m.pairs[i].Source, true
}

// Targets returns the target column names in insertion order.
// This ordered list defines the output column set and order.
func (m ColumnMapping) Targets() []string {
	out := make([]string, len(m.pairs))
	for i, p := range m.pairs {
		out[i] = p.Target
	}
	return out
}

// Pairs returns a copy of the ordered target/source pairs
func (m ColumnMapping) Pairs() []MappingPair {
	return append([]MappingPair(nil), m.pairs...)
}

// Len returns the number of mapping entries
func (m ColumnMapping) Len() int {
	return len(m.pairs)
}

// IsEmpty reports whether the mapping has no entries
func (m ColumnMapping) IsEmpty() bool {
	return len(m.pairs) == 0
}

// MarshalJSON emits a JSON object whose keys appear in insertion order
func (m ColumnMapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m.pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Target)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Source)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object while preserving key order.
// Every value must be a string; anything else fails decoding. Duplicate
// keys follow JSON.parse semantics: position of the first occurrence,
// value of the last.
func (m *ColumnMapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("column mapping must be a JSON object, got %v", tok)
	}

	var next ColumnMapping
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("column mapping key must be a string, got %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		val, ok := valTok.(string)
		if !ok {
			return fmt.Errorf("column mapping value for %q must be a string, got %v", key, valTok)
		}
		next.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = next
	return nil
}

// MappingResult is the outcome of mapping analysis: a (possibly empty)
// target→source mapping plus advisory suggestions for the user. When the
// mapping is empty because analysis degraded, Suggestions explains why.
type MappingResult struct {
	Mapping     ColumnMapping `json:"columnMapping"`
	Suggestions []string      `json:"suggestions"`
}

// TemplateResult is a proposed blank schema: header names plus one example
// row. Notes carries advisory diagnostics when generation degraded.
type TemplateResult struct {
	Headers   []string `json:"headers"`
	SampleRow []string `json:"sampleRow"`
	Notes     []string `json:"notes,omitempty"`
}

// IsEmpty reports whether template generation produced no schema
func (t TemplateResult) IsEmpty() bool {
	return len(t.Headers) == 0
}
