package offline_test

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"tablecast/adapters/inference/offline"
	"tablecast/ai"
	"tablecast/domain/table"
	"tablecast/ports"
)

// askMapping renders a real mapping prompt, answers it offline, and decodes
// the JSON object back out of the prose-wrapped response
func askMapping(t *testing.T, headers []string, description string) table.MappingResult {
	t.Helper()
	prompt := ai.BuildMappingPrompt(headers, nil, description)

	res, err := offline.NewMatcher().Generate(context.Background(), ports.GenerateRequest{Prompt: prompt})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	span, ok := ai.ExtractJSONObject(res.Text)
	if !ok {
		t.Fatalf("Expected extractable JSON in response, got %q", res.Text)
	}
	var decoded table.MappingResult
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		t.Fatalf("Expected decodable mapping payload, got error: %v", err)
	}
	return decoded
}

func TestMatcherExactMatch(t *testing.T) {
	res := askMapping(t, []string{"성명", "부서"}, "성명, 부서")

	if src, _ := res.Mapping.Source("성명"); src != "성명" {
		t.Errorf("Expected exact match for 성명, got %q", src)
	}
	if src, _ := res.Mapping.Source("부서"); src != "부서" {
		t.Errorf("Expected exact match for 부서, got %q", src)
	}
}

func TestMatcherCaseInsensitiveMatch(t *testing.T) {
	res := askMapping(t, []string{"Name", "Email"}, "name, EMAIL")

	if src, _ := res.Mapping.Source("name"); src != "Name" {
		t.Errorf("Expected case-insensitive match to Name, got %q", src)
	}
	if src, _ := res.Mapping.Source("EMAIL"); src != "Email" {
		t.Errorf("Expected case-insensitive match to Email, got %q", src)
	}
}

func TestMatcherBigramMatch(t *testing.T) {
	res := askMapping(t, []string{"Customer Name", "Order Total"}, "customer, total")

	if src, _ := res.Mapping.Source("customer"); src != "Customer Name" {
		t.Errorf("Expected bigram match to Customer Name, got %q", src)
	}
	if src, _ := res.Mapping.Source("total"); src != "Order Total" {
		t.Errorf("Expected bigram match to Order Total, got %q", src)
	}
}

func TestMatcherUnmatchedTargetLeftOut(t *testing.T) {
	res := askMapping(t, []string{"성명", "부서"}, "성명, zzz")

	if res.Mapping.Len() != 1 {
		t.Errorf("Expected only the matched target, got %v", res.Mapping.Targets())
	}
	if _, ok := res.Mapping.Source("zzz"); ok {
		t.Error("Expected dissimilar target to stay unmapped")
	}
	found := false
	for _, s := range res.Suggestions {
		if strings.Contains(s, `"zzz"`) {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a suggestion naming the unmatched target, got %v", res.Suggestions)
	}
}

func TestMatcherLabelledDescription(t *testing.T) {
	res := askMapping(t, []string{"이름", "팀"}, "columns: 이름, 팀")

	if got := res.Mapping.Targets(); !reflect.DeepEqual(got, []string{"이름", "팀"}) {
		t.Errorf("Expected label stripped from first candidate, got %v", got)
	}
}

func TestMatcherEmptyDescription(t *testing.T) {
	res := askMapping(t, []string{"성명"}, "")

	if !res.Mapping.IsEmpty() {
		t.Errorf("Expected empty mapping, got %v", res.Mapping.Targets())
	}
	found := false
	for _, s := range res.Suggestions {
		if strings.Contains(s, "separated by commas") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected guidance toward a column list, got %v", res.Suggestions)
	}
}

func TestMatcherTemplate(t *testing.T) {
	prompt := ai.BuildTemplatePrompt("date, email, 전화번호")

	res, err := offline.NewMatcher().Generate(context.Background(), ports.GenerateRequest{Prompt: prompt})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	span, ok := ai.ExtractJSONObject(res.Text)
	if !ok {
		t.Fatalf("Expected extractable JSON, got %q", res.Text)
	}
	var decoded table.TemplateResult
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		t.Fatalf("Expected decodable template payload, got error: %v", err)
	}

	if !reflect.DeepEqual(decoded.Headers, []string{"date", "email", "전화번호"}) {
		t.Errorf("Expected headers from the description, got %v", decoded.Headers)
	}
	if !reflect.DeepEqual(decoded.SampleRow, []string{"2024-01-15", "user@example.com", "010-1234-5678"}) {
		t.Errorf("Expected typed example values, got %v", decoded.SampleRow)
	}
}

func TestMatcherTemplateFallbackHeaders(t *testing.T) {
	prompt := ai.BuildTemplatePrompt("")

	res, err := offline.NewMatcher().Generate(context.Background(), ports.GenerateRequest{Prompt: prompt})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	span, _ := ai.ExtractJSONObject(res.Text)
	var decoded table.TemplateResult
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		t.Fatalf("Expected decodable template payload, got error: %v", err)
	}
	if !reflect.DeepEqual(decoded.Headers, []string{"Name", "Category", "Value"}) {
		t.Errorf("Expected fallback headers, got %v", decoded.Headers)
	}
}

func TestMatcherContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := offline.NewMatcher().Generate(ctx, ports.GenerateRequest{Prompt: "x"})
	if err == nil {
		t.Fatal("Expected an error when the context is already cancelled")
	}
}

// TestMatcherThroughClient runs the offline provider through the full
// inference client: the prose-wrapped answer must survive extraction and
// structural validation exactly like a live provider's would
func TestMatcherThroughClient(t *testing.T) {
	client := ai.New(offline.NewMatcher(), nil, ai.DefaultConfig())

	res := client.AnalyzeMapping(context.Background(), []string{"성명", "부서"}, nil, "이름, 부서")

	if src, _ := res.Mapping.Source("부서"); src != "부서" {
		t.Errorf("Expected 부서 matched through the client, got %q", src)
	}
	if len(res.Suggestions) == 0 {
		t.Error("Expected the offline provenance suggestion to pass through")
	}

	tmpl := client.GenerateTemplate(context.Background(), "name, amount")
	if tmpl.IsEmpty() {
		t.Errorf("Expected a schema proposal, got notes %v", tmpl.Notes)
	}
}
