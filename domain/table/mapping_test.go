package table

import (
	"encoding/json"
	"reflect"
	"testing"
)

// TestColumnMappingOrder tests that targets keep insertion order
func TestColumnMappingOrder(t *testing.T) {
	var m ColumnMapping
	m.Set("zeta", "a")
	m.Set("alpha", "b")
	m.Set("mid", "c")

	want := []string{"zeta", "alpha", "mid"}
	if got := m.Targets(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected targets %v, got %v", want, got)
	}
}

// TestColumnMappingSetUpdatesInPlace tests the duplicate-target rule:
// position of first occurrence, value of last
func TestColumnMappingSetUpdatesInPlace(t *testing.T) {
	var m ColumnMapping
	m.Set("a", "one")
	m.Set("b", "two")
	m.Set("a", "three")

	if got := m.Targets(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Expected targets [a b], got %v", got)
	}
	if src, _ := m.Source("a"); src != "three" {
		t.Errorf("Expected updated source 'three', got %q", src)
	}
	if m.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", m.Len())
	}
}

// TestColumnMappingSource tests lookup of present and absent targets
func TestColumnMappingSource(t *testing.T) {
	m := NewColumnMapping(MappingPair{Target: "Name", Source: "성명"})

	src, ok := m.Source("Name")
	if !ok || src != "성명" {
		t.Errorf("Expected (성명, true), got (%q, %v)", src, ok)
	}
	if _, ok := m.Source("name"); ok {
		t.Error("Expected case-sensitive lookup to miss 'name'")
	}
	if _, ok := m.Source("missing"); ok {
		t.Error("Expected miss for absent target")
	}
}

// TestColumnMappingUnmarshalOrder tests that JSON key order survives decoding
func TestColumnMappingUnmarshalOrder(t *testing.T) {
	var m ColumnMapping
	if err := json.Unmarshal([]byte(`{"이름":"성명","팀":"부서","직급":"Title"}`), &m); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}

	want := []string{"이름", "팀", "직급"}
	if got := m.Targets(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected ordered targets %v, got %v", want, got)
	}
}

// TestColumnMappingUnmarshalDuplicateKeys tests JSON.parse duplicate
// semantics: first position, last value
func TestColumnMappingUnmarshalDuplicateKeys(t *testing.T) {
	var m ColumnMapping
	if err := json.Unmarshal([]byte(`{"a":"x","b":"y","a":"z"}`), &m); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}

	if got := m.Targets(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Expected targets [a b], got %v", got)
	}
	if src, _ := m.Source("a"); src != "z" {
		t.Errorf("Expected last value 'z' for duplicate key, got %q", src)
	}
}

// TestColumnMappingUnmarshalRejectsNonStrings tests structural strictness
func TestColumnMappingUnmarshalRejectsNonStrings(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"number value", `{"a": 3}`},
		{"null value", `{"a": null}`},
		{"object value", `{"a": {"nested": "x"}}`},
		{"array value", `{"a": ["x"]}`},
		{"bool value", `{"a": true}`},
		{"top-level array", `["a","b"]`},
		{"top-level string", `"a"`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var m ColumnMapping
			if err := json.Unmarshal([]byte(test.input), &m); err == nil {
				t.Errorf("Expected decode error for %s", test.input)
			}
		})
	}
}

// TestColumnMappingMarshalRoundTrip tests that marshal output preserves
// insertion order and decodes back to the same mapping
func TestColumnMappingMarshalRoundTrip(t *testing.T) {
	m := NewColumnMapping(
		MappingPair{Target: "z", Source: "col3"},
		MappingPair{Target: "a", Source: "col1"},
		MappingPair{Target: "m", Source: "col2"},
	)

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Unexpected marshal error: %v", err)
	}
	if string(data) != `{"z":"col3","a":"col1","m":"col2"}` {
		t.Errorf("Expected insertion-order object, got %s", data)
	}

	var back ColumnMapping
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unexpected decode error: %v", err)
	}
	if !reflect.DeepEqual(back.Pairs(), m.Pairs()) {
		t.Errorf("Expected round-trip pairs %v, got %v", m.Pairs(), back.Pairs())
	}
}

// TestColumnMappingEmpty tests zero-value behavior
func TestColumnMappingEmpty(t *testing.T) {
	var m ColumnMapping
	if !m.IsEmpty() {
		t.Error("Expected zero-value mapping to be empty")
	}
	if got := m.Targets(); len(got) != 0 {
		t.Errorf("Expected no targets, got %v", got)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Unexpected marshal error: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected {}, got %s", data)
	}
}
