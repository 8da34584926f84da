package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"tablecast/ai"
	"tablecast/domain/core"
	"tablecast/domain/table"
	"tablecast/domain/transform"
	"tablecast/internal/profile"
	"tablecast/ports"
)

// TransformService orchestrates the upload-analyze-transform-export flow.
// One session holds one uploaded workbook plus its latest mapping analysis;
// each step replaces state wholesale, never merges.
type TransformService struct {
	reader   ports.TableReader
	writer   ports.TableWriter
	analyzer *ai.Client
	sessions ports.SessionStore
}

// NewTransformService creates a transform service
func NewTransformService(reader ports.TableReader, writer ports.TableWriter, analyzer *ai.Client, sessions ports.SessionStore) *TransformService {
	return &TransformService{
		reader:   reader,
		writer:   writer,
		analyzer: analyzer,
		sessions: sessions,
	}
}

// Upload parses a spreadsheet and opens a fresh session around it. Every
// sheet is parsed, but only the first participates downstream; the rest are
// kept so callers can report what was ignored.
func (s *TransformService) Upload(data []byte, filename string) (*transform.Session, error) {
	tables, err := s.reader.Parse(data, filename)
	if err != nil {
		return nil, err
	}

	sess := transform.NewSession(filename, tables)
	s.sessions.Save(sess)

	if active := sess.ActiveTable(); active != nil {
		log.Printf("[TransformService] Session %s opened - file=%s, sheets=%d, rows=%d, fingerprint=%s",
			sess.ID, filename, sess.SheetCount(), active.RowCount(), sess.Fingerprint.Short())
	} else {
		log.Printf("[TransformService] Session %s opened - file=%s, no sheets", sess.ID, filename)
	}
	return sess, nil
}

// Get retrieves a session by ID
func (s *TransformService) Get(id core.SessionID) (*transform.Session, error) {
	return s.sessions.Get(id)
}

// Reset drops a session and its analysis state
func (s *TransformService) Reset(id core.SessionID) {
	s.sessions.Delete(id)
	log.Printf("[TransformService] Session %s reset", id)
}

// Analyze asks the mapping client how the active table's columns should
// feed the described output, and stores the result on the session. The
// returned error covers session lookup only: analysis itself never fails,
// it degrades into suggestion text.
func (s *TransformService) Analyze(ctx context.Context, id core.SessionID, description string) (table.MappingResult, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return table.MappingResult{}, err
	}
	active := sess.ActiveTable()
	if active == nil {
		return table.MappingResult{}, core.ErrNoTable
	}

	res := s.analyzer.AnalyzeMapping(ctx, active.Headers, active.Rows, description)
	sess.ApplyAnalysis(res)
	s.sessions.Save(sess)

	log.Printf("[TransformService] Session %s analyzed - targets=%d, suggestions=%d",
		id, res.Mapping.Len(), len(res.Suggestions))
	return res, nil
}

// Transform projects the active table through the stored mapping. The
// mapping's target order defines the output column order.
func (s *TransformService) Transform(id core.SessionID) (table.Table, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return table.Table{}, err
	}
	active := sess.ActiveTable()
	if active == nil {
		return table.Table{}, core.ErrNoTable
	}
	if !sess.HasMapping() {
		return table.Table{}, core.ErrNoMapping
	}

	out := table.Project(*active, sess.Mapping, sess.Mapping.Targets())
	out.Name = "Transformed"
	return out, nil
}

// Export transforms and renders the result as workbook bytes, returning a
// suggested download filename derived from the source name
func (s *TransformService) Export(id core.SessionID) ([]byte, string, error) {
	out, err := s.Transform(id)
	if err != nil {
		return nil, "", err
	}

	data, err := s.writer.Write([]table.Table{out})
	if err != nil {
		return nil, "", err
	}

	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, "", err
	}
	return data, s.exportFilename(sess.SourceName), nil
}

// Template proposes a blank schema from a description alone and, when the
// proposal is non-empty, materializes it as a new session so the user can
// continue from the generated table. A degraded proposal opens no session.
func (s *TransformService) Template(ctx context.Context, description string) (table.TemplateResult, *transform.Session, error) {
	res := s.analyzer.GenerateTemplate(ctx, description)
	if res.IsEmpty() {
		return res, nil, nil
	}

	row := make(table.Row, len(res.SampleRow))
	for i, v := range res.SampleRow {
		if v == "" {
			continue
		}
		row[i] = v
	}
	t := table.Table{
		Name:    "Template",
		Headers: append([]string(nil), res.Headers...),
		Rows:    []table.Row{row},
	}

	sess := transform.NewSession("template"+s.writer.FileExtension(), []table.Table{t})
	s.sessions.Save(sess)
	log.Printf("[TransformService] Session %s opened from template - headers=%d", sess.ID, len(res.Headers))
	return res, sess, nil
}

// ExportContentType is the MIME type of exported workbooks
func (s *TransformService) ExportContentType() string {
	return s.writer.ContentType()
}

// Profile computes the column profile of a session's active table
func (s *TransformService) Profile(id core.SessionID) ([]profile.Column, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	active := sess.ActiveTable()
	if active == nil {
		return nil, core.ErrNoTable
	}
	return profile.Columns(active), nil
}

// exportFilename suggests a download name from the uploaded filename
func (s *TransformService) exportFilename(sourceName string) string {
	base := filepath.Base(sourceName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		return "transformed" + s.writer.FileExtension()
	}
	return fmt.Sprintf("%s-transformed%s", stem, s.writer.FileExtension())
}
