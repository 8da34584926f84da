package ports

import "tablecast/domain/table"

// TableReader parses an uploaded spreadsheet held fully in memory into
// tables, one per sheet, preserving sheet order
type TableReader interface {
	Parse(data []byte, filename string) ([]table.Table, error)
}

// TableWriter renders tables into a downloadable workbook, one sheet per
// table, preserving input order
type TableWriter interface {
	Write(tables []table.Table) ([]byte, error)

	// ContentType is the MIME type of the produced bytes
	ContentType() string

	// FileExtension is the suffix for suggested download filenames, with dot
	FileExtension() string
}
