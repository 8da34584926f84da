package transform

import (
	"time"

	"tablecast/domain/core"
	"tablecast/domain/table"
)

// Session is the working state of one interactive transform: the uploaded
// workbook, the latest mapping analysis, and nothing else. Sessions live in
// memory only and are replaced wholesale when a new file is uploaded.
type Session struct {
	ID          core.SessionID      `json:"id"`
	SourceName  string              `json:"source_name"`
	Tables      []table.Table       `json:"tables"`
	Mapping     table.ColumnMapping `json:"mapping"`
	Suggestions []string            `json:"suggestions"`
	Fingerprint core.Fingerprint    `json:"fingerprint"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// NewSession creates a session around freshly parsed tables
func NewSession(sourceName string, tables []table.Table) *Session {
	s := &Session{
		ID:         core.NewSessionID(),
		SourceName: sourceName,
		Tables:     tables,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if active := s.ActiveTable(); active != nil {
		s.Fingerprint = active.Fingerprint()
	}
	return s
}

// ActiveTable returns the first sheet, or nil when no tables were parsed.
// Only the first sheet participates in analysis, transform, and export;
// the remaining sheets are kept so callers can report what was ignored.
func (s *Session) ActiveTable() *table.Table {
	if len(s.Tables) == 0 {
		return nil
	}
	return &s.Tables[0]
}

// SheetCount returns the number of parsed sheets
func (s *Session) SheetCount() int {
	return len(s.Tables)
}

// IgnoredSheets returns names of sheets beyond the first
func (s *Session) IgnoredSheets() []string {
	if len(s.Tables) <= 1 {
		return nil
	}
	names := make([]string, 0, len(s.Tables)-1)
	for _, t := range s.Tables[1:] {
		names = append(names, t.Name)
	}
	return names
}

// HasMapping reports whether a mapping analysis has been stored
func (s *Session) HasMapping() bool {
	return !s.Mapping.IsEmpty()
}

// ApplyAnalysis replaces the stored mapping and suggestions wholesale.
// Results are never merged with earlier analyses.
func (s *Session) ApplyAnalysis(res table.MappingResult) {
	s.Mapping = res.Mapping
	s.Suggestions = res.Suggestions
	s.UpdatedAt = time.Now()
}

// ClearAnalysis drops any stored mapping and suggestions
func (s *Session) ClearAnalysis() {
	s.Mapping = table.ColumnMapping{}
	s.Suggestions = nil
	s.UpdatedAt = time.Now()
}
