package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"tablecast/domain/table"
	"tablecast/internal/errors"
	"tablecast/ports"
)

// Client answers the two inference tasks: derive a column mapping from an
// uploaded table plus a free-text description, and propose a blank schema
// from a description alone. The model's answer is free text, not guaranteed
// JSON, so every response goes through the same extract-then-validate
// discipline, and every failure class degrades to an empty result with a
// human-readable diagnostic. Neither operation ever returns an error.
type Client struct {
	gen   ports.TextGenerator
	usage ports.UsageRecorder
	cfg   Config
}

// Config fixes the sampling knobs for every call the client makes
type Config struct {
	// Temperature stays low: mapping is structured extraction, not
	// open-ended generation, so literal answers beat creative ones.
	Temperature     float64
	MaxOutputTokens int
}

// DefaultConfig returns the sampling defaults
func DefaultConfig() Config {
	return Config{
		Temperature:     0.1,
		MaxOutputTokens: 2048,
	}
}

// Operation names reported to the usage recorder
const (
	OpAnalyzeMapping   = "analyze_mapping"
	OpGenerateTemplate = "generate_template"
)

// New creates a client around a text generator. A nil generator marks the
// client unconfigured (no credential was available): it still serves every
// call, answering with a configuration diagnostic instead of dialing out.
// The usage recorder may be nil.
func New(gen ports.TextGenerator, usage ports.UsageRecorder, cfg Config) *Client {
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultConfig().Temperature
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = DefaultConfig().MaxOutputTokens
	}
	if gen == nil {
		log.Printf("[MappingClient] Initialized without a provider - analysis will degrade to configuration diagnostics")
	} else {
		log.Printf("[MappingClient] Initialized with provider=%s, temp=%.2f, maxTokens=%d",
			gen.Name(), cfg.Temperature, cfg.MaxOutputTokens)
	}
	return &Client{gen: gen, usage: usage, cfg: cfg}
}

// Configured reports whether the client has a provider to call
func (c *Client) Configured() bool {
	return c.gen != nil
}

// Provider returns the provider name, or "none" when unconfigured
func (c *Client) Provider() string {
	if c.gen == nil {
		return "none"
	}
	return c.gen.Name()
}

// mappingPayload is the expected shape embedded in a mapping answer.
// Pointer fields distinguish absent from empty: both must be present for
// the payload to count as structurally valid.
type mappingPayload struct {
	ColumnMapping *table.ColumnMapping `json:"columnMapping"`
	Suggestions   *[]string            `json:"suggestions"`
}

// templatePayload is the expected shape embedded in a template answer
type templatePayload struct {
	Headers   *[]string `json:"headers"`
	SampleRow *[]string `json:"sampleRow"`
}

// AnalyzeMapping asks the model which source column should feed each output
// column. At most SampleRowLimit rows accompany the prompt. The result is
// returned verbatim on success; mapping values are not checked against the
// actual source headers here - projection treats unknown sources as absent.
// On any failure the mapping comes back empty and Suggestions explains why.
func (c *Client) AnalyzeMapping(ctx context.Context, headers []string, rows []table.Row, description string) table.MappingResult {
	if c.gen == nil {
		err := errors.ConfigMissing("no inference provider configured")
		c.logDegrade(OpAnalyzeMapping, err)
		return degradedMapping("Column mapping is unavailable: no AI provider is configured. Set an API key and restart.")
	}

	prompt := BuildMappingPrompt(headers, rows, description)
	log.Printf("[MappingClient] Analyzing mapping - provider=%s, columns=%d, promptBytes=%d",
		c.gen.Name(), len(headers), len(prompt))
	log.Printf("[MappingClient] Prompt preview: %s", promptPreview(prompt))

	res, err := c.gen.Generate(ctx, c.request(prompt))
	if err != nil {
		c.logDegrade(OpAnalyzeMapping, errors.TransportError(c.gen.Name(), err))
		return degradedMapping(fmt.Sprintf("Analysis failed: %v. Check the connection and try again.", err))
	}
	c.record(OpAnalyzeMapping, res.Usage)

	if strings.TrimSpace(res.Text) == "" {
		c.logDegrade(OpAnalyzeMapping, errors.EmptyResponse(c.gen.Name()))
		return degradedMapping("The model returned an empty response. Try rephrasing the description.")
	}

	span, ok := ExtractJSONObject(res.Text)
	if !ok {
		c.logDegrade(OpAnalyzeMapping, errors.ExtractionError("no JSON object in response text"))
		return degradedMapping("The model's response contained no mapping. Try rephrasing the description.")
	}

	var payload mappingPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		c.logDegrade(OpAnalyzeMapping, errors.DecodeError("mapping payload failed to parse", err))
		return degradedMapping("The model's response could not be read as a column mapping. Try again.")
	}
	if payload.ColumnMapping == nil || payload.Suggestions == nil {
		c.logDegrade(OpAnalyzeMapping, errors.DecodeError("mapping payload missing required fields", nil))
		return degradedMapping("The model's response was missing the expected mapping fields. Try again.")
	}

	log.Printf("[MappingClient] Mapping decoded - targets=%d, suggestions=%d",
		payload.ColumnMapping.Len(), len(*payload.Suggestions))
	return table.MappingResult{
		Mapping:     *payload.ColumnMapping,
		Suggestions: *payload.Suggestions,
	}
}

// GenerateTemplate asks the model to propose headers and one example row for
// a blank target schema. Same request and degrade discipline as
// AnalyzeMapping: never errors, diagnostics land in Notes.
func (c *Client) GenerateTemplate(ctx context.Context, description string) table.TemplateResult {
	if c.gen == nil {
		err := errors.ConfigMissing("no inference provider configured")
		c.logDegrade(OpGenerateTemplate, err)
		return degradedTemplate("Template generation is unavailable: no AI provider is configured. Set an API key and restart.")
	}

	prompt := BuildTemplatePrompt(description)
	log.Printf("[MappingClient] Generating template - provider=%s, promptBytes=%d", c.gen.Name(), len(prompt))

	res, err := c.gen.Generate(ctx, c.request(prompt))
	if err != nil {
		c.logDegrade(OpGenerateTemplate, errors.TransportError(c.gen.Name(), err))
		return degradedTemplate(fmt.Sprintf("Template generation failed: %v. Check the connection and try again.", err))
	}
	c.record(OpGenerateTemplate, res.Usage)

	if strings.TrimSpace(res.Text) == "" {
		c.logDegrade(OpGenerateTemplate, errors.EmptyResponse(c.gen.Name()))
		return degradedTemplate("The model returned an empty response. Try rephrasing the description.")
	}

	span, ok := ExtractJSONObject(res.Text)
	if !ok {
		c.logDegrade(OpGenerateTemplate, errors.ExtractionError("no JSON object in response text"))
		return degradedTemplate("The model's response contained no schema. Try rephrasing the description.")
	}

	var payload templatePayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		c.logDegrade(OpGenerateTemplate, errors.DecodeError("template payload failed to parse", err))
		return degradedTemplate("The model's response could not be read as a schema. Try again.")
	}
	if payload.Headers == nil || payload.SampleRow == nil {
		c.logDegrade(OpGenerateTemplate, errors.DecodeError("template payload missing required fields", nil))
		return degradedTemplate("The model's response was missing the expected schema fields. Try again.")
	}

	log.Printf("[MappingClient] Template decoded - headers=%d", len(*payload.Headers))
	return table.TemplateResult{
		Headers:   *payload.Headers,
		SampleRow: *payload.SampleRow,
	}
}

func (c *Client) request(prompt string) ports.GenerateRequest {
	return ports.GenerateRequest{
		Prompt:          prompt,
		Temperature:     c.cfg.Temperature,
		MaxOutputTokens: c.cfg.MaxOutputTokens,
	}
}

func (c *Client) record(operation string, u ports.TokenUsage) {
	if c.usage != nil {
		c.usage.Record(operation, u)
	}
}

func (c *Client) logDegrade(operation string, err error) {
	log.Printf("[MappingClient] %s degraded (%s): %v", operation, errors.GetCode(err), err)
}

func degradedMapping(msg string) table.MappingResult {
	return table.MappingResult{Suggestions: []string{msg}}
}

func degradedTemplate(msg string) table.TemplateResult {
	return table.TemplateResult{Notes: []string{msg}}
}
