package ai

import (
	"fmt"
	"strings"

	"tablecast/domain/table"
)

// SampleRowLimit caps how many data rows accompany a mapping prompt.
// The full dataset is never sent to the model; three rows are enough for it
// to see value shapes without inflating the payload.
const SampleRowLimit = 3

// Prompt section markers. The offline provider reads the table shape back
// out of a rendered prompt through these, so they are part of the package API.
const (
	PromptSourceColumnsPrefix = "Source columns: "
	PromptSampleRowsHeading   = "Sample rows:"
	PromptDescriptionPrefix   = "Desired output: "
)

// BuildMappingPrompt renders the instruction for the column-mapping task:
// source headers, at most SampleRowLimit sample rows as pipe-delimited text,
// and the user's free-text description of the output they want.
func BuildMappingPrompt(headers []string, rows []table.Row, description string) string {
	var b strings.Builder

	b.WriteString("You are a spreadsheet transformation assistant. A user uploaded a table and described the output layout they want. Decide which source column should feed each output column.\n\n")

	b.WriteString(PromptSourceColumnsPrefix)
	b.WriteString(strings.Join(headers, ", "))
	b.WriteString("\n")

	sample := rows
	if len(sample) > SampleRowLimit {
		sample = sample[:SampleRowLimit]
	}
	if len(sample) > 0 {
		b.WriteString(PromptSampleRowsHeading)
		b.WriteString("\n")
		for _, row := range sample {
			b.WriteString(renderSampleRow(row))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(PromptDescriptionPrefix)
	b.WriteString(description)
	b.WriteString("\n\n")

	b.WriteString(`Respond with a single JSON object of this exact shape:
{"columnMapping": {"<output column>": "<source column>", ...}, "suggestions": ["<advice for the user>", ...]}
Every columnMapping value must be one of the source column names, copied exactly. Order the keys in the column order the output should have. Leave out output columns you cannot fill, and mention them in suggestions instead. Do not add any other fields.`)

	return b.String()
}

// BuildTemplatePrompt renders the instruction for the blank-schema task:
// propose headers and one example row from a description alone.
func BuildTemplatePrompt(description string) string {
	var b strings.Builder

	b.WriteString("You are a spreadsheet transformation assistant. Propose a table schema for the description below.\n\n")

	b.WriteString(PromptDescriptionPrefix)
	b.WriteString(description)
	b.WriteString("\n\n")

	b.WriteString(`Respond with a single JSON object of this exact shape:
{"headers": ["<column name>", ...], "sampleRow": ["<example value>", ...]}
with exactly one example value per header, in the same order. Do not add any other fields.`)

	return b.String()
}

// renderSampleRow joins one row's cells with pipes, the way a human would
// sketch a table in plain text
func renderSampleRow(row table.Row) string {
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = table.ValueString(v)
	}
	return strings.Join(cells, " | ")
}

// promptPreview truncates a prompt for log lines
func promptPreview(prompt string) string {
	const max = 500
	if len(prompt) <= max {
		return prompt
	}
	return fmt.Sprintf("%s... (%d more bytes)", prompt[:max], len(prompt)-max)
}
