package ai_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"tablecast/adapters/inference"
	"tablecast/ai"
	"tablecast/domain/table"
	"tablecast/internal/testkit"
	"tablecast/internal/usage"
	"tablecast/ports"
)

func newClient(mock *inference.Mock) *ai.Client {
	return ai.New(mock, nil, ai.DefaultConfig())
}

// TestAnalyzeMappingSuccess tests the happy path: prose-wrapped JSON decodes
// into an ordered mapping with suggestions carried verbatim
func TestAnalyzeMappingSuccess(t *testing.T) {
	mock := &inference.Mock{Text: testkit.MappingResponse(
		[]table.MappingPair{{Target: "이름", Source: "성명"}, {Target: "팀", Source: "부서"}},
		[]string{"부서 값이 축약됩니다"},
	)}
	src := testkit.RosterTable()

	res := newClient(mock).AnalyzeMapping(context.Background(), src.Headers, src.Rows, "이름과 팀")

	if got := res.Mapping.Targets(); !reflect.DeepEqual(got, []string{"이름", "팀"}) {
		t.Errorf("Expected ordered targets [이름 팀], got %v", got)
	}
	if srcName, _ := res.Mapping.Source("이름"); srcName != "성명" {
		t.Errorf("Expected 이름 mapped to 성명, got %q", srcName)
	}
	if !reflect.DeepEqual(res.Suggestions, []string{"부서 값이 축약됩니다"}) {
		t.Errorf("Expected suggestions carried verbatim, got %v", res.Suggestions)
	}
}

// TestAnalyzeMappingUnvalidatedSources tests that mapping values are passed
// through even when they name no real source column; projection handles them
func TestAnalyzeMappingUnvalidatedSources(t *testing.T) {
	mock := &inference.Mock{Text: testkit.MappingResponse(
		[]table.MappingPair{{Target: "급여", Source: "연봉"}}, nil,
	)}

	res := newClient(mock).AnalyzeMapping(context.Background(), []string{"성명"}, nil, "급여")

	if src, ok := res.Mapping.Source("급여"); !ok || src != "연봉" {
		t.Errorf("Expected unvalidated source 연봉 passed through, got (%q, %v)", src, ok)
	}
}

// TestAnalyzeMappingUnconfigured tests the credential short-circuit: no
// provider call, empty mapping, explanatory suggestion
func TestAnalyzeMappingUnconfigured(t *testing.T) {
	client := ai.New(nil, nil, ai.DefaultConfig())

	res := client.AnalyzeMapping(context.Background(), []string{"a"}, nil, "desc")

	if !res.Mapping.IsEmpty() {
		t.Error("Expected empty mapping when unconfigured")
	}
	if len(res.Suggestions) == 0 || !strings.Contains(res.Suggestions[0], "no AI provider") {
		t.Errorf("Expected configuration suggestion, got %v", res.Suggestions)
	}
}

// TestAnalyzeMappingDegrades tests every failure class: each one yields an
// empty mapping plus a non-empty suggestion, and never an error or panic
func TestAnalyzeMappingDegrades(t *testing.T) {
	tests := []struct {
		name string
		mock *inference.Mock
		hint string
	}{
		{"transport failure", &inference.Mock{Err: errors.New("gemini http 429: quota exceeded")}, "quota exceeded"},
		{"empty response", &inference.Mock{Text: "   \n"}, "empty response"},
		{"no json object", &inference.Mock{Text: "I cannot help with that."}, "no mapping"},
		{"malformed json", &inference.Mock{Text: `{"columnMapping": {"a": }`}, "could not be read"},
		{"missing suggestions field", &inference.Mock{Text: `{"columnMapping":{"a":"b"}}`}, "missing the expected"},
		{"missing mapping field", &inference.Mock{Text: `{"suggestions":[]}`}, "missing the expected"},
		{"null mapping field", &inference.Mock{Text: `{"columnMapping":null,"suggestions":[]}`}, "missing the expected"},
		{"non-string mapping value", &inference.Mock{Text: `{"columnMapping":{"a":3},"suggestions":[]}`}, "could not be read"},
		{"non-string suggestion", &inference.Mock{Text: `{"columnMapping":{},"suggestions":[42]}`}, "could not be read"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res := newClient(test.mock).AnalyzeMapping(context.Background(), []string{"a"}, nil, "desc")

			if !res.Mapping.IsEmpty() {
				t.Errorf("Expected empty mapping, got %v", res.Mapping.Targets())
			}
			if len(res.Suggestions) == 0 {
				t.Fatal("Expected a diagnostic suggestion")
			}
			if !strings.Contains(res.Suggestions[0], test.hint) {
				t.Errorf("Expected suggestion mentioning %q, got %q", test.hint, res.Suggestions[0])
			}
		})
	}
}

// TestAnalyzeMappingSampleLimit tests that the prompt sent to the provider
// carries at most the first three rows of a larger table
func TestAnalyzeMappingSampleLimit(t *testing.T) {
	mock := &inference.Mock{Text: testkit.MappingResponse(nil, nil)}
	orders := testkit.OrdersTable()

	newClient(mock).AnalyzeMapping(context.Background(), orders.Headers, orders.Rows, "ids only")

	if !strings.Contains(mock.LastPrompt, "ORD-003") {
		t.Error("Expected third row in the prompt")
	}
	if strings.Contains(mock.LastPrompt, "ORD-004") {
		t.Error("Expected rows past the third to be withheld from the prompt")
	}
}

// TestAnalyzeMappingRecordsUsage tests that provider-reported token counts
// reach the usage recorder under the operation name
func TestAnalyzeMappingRecordsUsage(t *testing.T) {
	meter := usage.NewMeter()
	mock := &inference.Mock{
		Text:  testkit.MappingResponse(nil, nil),
		Usage: ports.TokenUsage{PromptTokens: 90, CompletionTokens: 10, TotalTokens: 100},
	}
	client := ai.New(mock, meter, ai.DefaultConfig())

	client.AnalyzeMapping(context.Background(), []string{"a"}, nil, "desc")

	snap := meter.Snapshot()
	if snap.Totals.TotalTokens != 100 || snap.Totals.Calls != 1 {
		t.Errorf("Expected usage recorded, got %+v", snap.Totals)
	}
	if snap.ByOperation[ai.OpAnalyzeMapping].TotalTokens != 100 {
		t.Errorf("Expected usage keyed by operation, got %+v", snap.ByOperation)
	}
}

// TestGenerateTemplateSuccess tests the blank-schema happy path
func TestGenerateTemplateSuccess(t *testing.T) {
	mock := &inference.Mock{Text: testkit.TemplateResponse(
		[]string{"Name", "Email"}, []string{"Jane", "jane@example.com"},
	)}

	res := newClient(mock).GenerateTemplate(context.Background(), "contact list")

	if !reflect.DeepEqual(res.Headers, []string{"Name", "Email"}) {
		t.Errorf("Expected proposed headers, got %v", res.Headers)
	}
	if !reflect.DeepEqual(res.SampleRow, []string{"Jane", "jane@example.com"}) {
		t.Errorf("Expected sample row, got %v", res.SampleRow)
	}
	if len(res.Notes) != 0 {
		t.Errorf("Expected no notes on success, got %v", res.Notes)
	}
}

// TestGenerateTemplateDegrades tests that the template task follows the same
// never-error policy as mapping analysis, including on transport failure
func TestGenerateTemplateDegrades(t *testing.T) {
	tests := []struct {
		name string
		mock *inference.Mock
	}{
		{"transport failure", &inference.Mock{Err: errors.New("dial tcp: connection refused")}},
		{"empty response", &inference.Mock{Text: ""}},
		{"no json object", &inference.Mock{Text: "plain prose"}},
		{"missing sampleRow", &inference.Mock{Text: `{"headers":["A"]}`}},
		{"non-string header", &inference.Mock{Text: `{"headers":[1],"sampleRow":["x"]}`}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res := newClient(test.mock).GenerateTemplate(context.Background(), "desc")

			if !res.IsEmpty() {
				t.Errorf("Expected empty template, got headers %v", res.Headers)
			}
			if len(res.Notes) == 0 {
				t.Error("Expected a diagnostic note")
			}
		})
	}
}

// TestGenerateTemplateUnconfigured tests the credential short-circuit for
// the template task
func TestGenerateTemplateUnconfigured(t *testing.T) {
	client := ai.New(nil, nil, ai.DefaultConfig())

	res := client.GenerateTemplate(context.Background(), "desc")

	if !res.IsEmpty() || len(res.Notes) == 0 {
		t.Errorf("Expected empty template with a note, got %+v", res)
	}
}

// TestClientProvider tests provider naming for status reporting
func TestClientProvider(t *testing.T) {
	if got := ai.New(nil, nil, ai.Config{}).Provider(); got != "none" {
		t.Errorf("Expected provider none, got %q", got)
	}
	if got := newClient(&inference.Mock{}).Provider(); got != "mock" {
		t.Errorf("Expected provider mock, got %q", got)
	}
	if ai.New(nil, nil, ai.Config{}).Configured() {
		t.Error("Expected nil generator to read as unconfigured")
	}
}
