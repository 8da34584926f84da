// Package testkit provides shared fixtures for tests: canned tables and
// canned provider payloads in the shapes the inference client expects.
package testkit

import (
	"fmt"
	"strings"

	"tablecast/domain/table"
)

// RosterTable is the Korean employee roster used across the test suite
func RosterTable() table.Table {
	return table.Table{
		Name:    "직원명부",
		Headers: []string{"성명", "부서"},
		Rows: []table.Row{
			{"김철수", "개발팀"},
			{"이영희", "영업팀"},
		},
	}
}

// OrdersTable is a ten-row order ledger, wide enough to exercise sample
// truncation and numeric profiling
func OrdersTable() table.Table {
	t := table.Table{
		Name:    "Orders",
		Headers: []string{"Order ID", "Customer", "Amount", "Notes"},
	}
	for i := 1; i <= 10; i++ {
		t.Rows = append(t.Rows, table.Row{
			fmt.Sprintf("ORD-%03d", i),
			fmt.Sprintf("Customer %d", i),
			float64(i * 100),
			nil,
		})
	}
	return t
}

// MultiSheetTables is a workbook-shaped fixture: the roster first, then
// sheets that downstream operations must ignore
func MultiSheetTables() []table.Table {
	second := table.Table{
		Name:    "Archive",
		Headers: []string{"Year", "Count"},
		Rows:    []table.Row{{float64(2023), float64(12)}},
	}
	return []table.Table{RosterTable(), second, {Name: "Empty"}}
}

// MappingResponse renders a provider payload for the mapping task: the JSON
// object wrapped in prose, the way models actually answer
func MappingResponse(pairs []table.MappingPair, suggestions []string) string {
	var b strings.Builder
	b.WriteString(`Here is the result: {"columnMapping":{`)
	for i, p := range pairs {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%q:%q", p.Target, p.Source)
	}
	b.WriteString(`},"suggestions":[`)
	for i, s := range suggestions {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%q", s)
	}
	b.WriteString(`]} Let me know if you need adjustments.`)
	return b.String()
}

// TemplateResponse renders a provider payload for the template task
func TemplateResponse(headers, sampleRow []string) string {
	var b strings.Builder
	b.WriteString(`Proposed schema: {"headers":[`)
	for i, h := range headers {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%q", h)
	}
	b.WriteString(`],"sampleRow":[`)
	for i, v := range sampleRow {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%q", v)
	}
	b.WriteString(`]}`)
	return b.String()
}
