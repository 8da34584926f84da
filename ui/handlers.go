package ui

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"tablecast/domain/core"
	"tablecast/domain/transform"
)

// Extensions accepted by the upload form
var uploadExtensions = []string{".xlsx", ".xlsm", ".xltm", ".xltx", ".csv", ".tsv"}

// handleIndex renders the main page
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "index.html", map[string]interface{}{
		"Provider":   a.analyzer.Provider(),
		"Configured": a.analyzer.Configured(),
	})
}

// handleUpload receives a spreadsheet, opens a fresh session around it, and
// answers with the source preview fragment
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Printf("[UI] Upload rejected: %v", err)
		a.renderError(w, fmt.Sprintf("Upload failed. The file may exceed the %d MB limit.", a.maxUploadBytes>>20))
		return
	}
	defer file.Close()

	if !hasUploadExtension(header.Filename) {
		a.renderError(w, "Unsupported file type. Upload an Excel workbook (.xlsx) or delimited text (.csv, .tsv).")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[UI] Upload read failed: %v", err)
		a.renderError(w, "The upload could not be read. Try again.")
		return
	}

	sess, err := a.service.Upload(data, header.Filename)
	if err != nil {
		log.Printf("[UI] Parse failed for %s: %v", header.Filename, err)
		a.renderError(w, fmt.Sprintf("Could not read %s as a spreadsheet.", header.Filename))
		return
	}

	a.setSessionCookie(w, sess.ID.String())
	a.renderTemplate(w, "source_preview.html", a.sourcePreview(sess, nil))
}

// handleTemplate proposes a blank schema from a description and, when the
// proposal lands, opens a session around the materialized table. A degraded
// proposal is not an error: the notes are the answer.
func (a *App) handleTemplate(w http.ResponseWriter, r *http.Request) {
	description := strings.TrimSpace(r.FormValue("description"))
	if description == "" {
		a.renderError(w, "Describe the table you want before generating a template.")
		return
	}

	res, sess, err := a.service.Template(r.Context(), description)
	if err != nil {
		log.Printf("[UI] Template materialization failed: %v", err)
		a.renderError(w, "The template could not be materialized. Try again.")
		return
	}
	if sess == nil {
		a.renderTemplate(w, "source_preview.html", sourcePreviewView{Notes: renderMarkdownLines(res.Notes)})
		return
	}

	a.setSessionCookie(w, sess.ID.String())
	a.renderTemplate(w, "source_preview.html", a.sourcePreview(sess, res.Notes))
}

// handleAnalyze derives a column mapping for the active table and answers
// with the mapping fragment. Inference never errors: a degraded analysis
// renders as suggestion text in the same fragment.
func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(w, r)
	if !ok {
		return
	}

	description := strings.TrimSpace(r.FormValue("description"))
	if description == "" {
		a.renderError(w, "Describe the output you want before analyzing.")
		return
	}

	res, err := a.service.Analyze(r.Context(), sess.ID, description)
	if err != nil {
		if errors.Is(err, core.ErrNoTable) {
			a.renderError(w, "The uploaded file had no sheets to analyze.")
			return
		}
		a.renderError(w, "Your session expired. Upload the file again.")
		return
	}

	a.renderTemplate(w, "mapping.html", mappingView{
		Pairs:       res.Mapping.Pairs(),
		Suggestions: renderMarkdownLines(res.Suggestions),
		HasMapping:  !res.Mapping.IsEmpty(),
	})
}

// handleTransform projects the active table through the stored mapping and
// answers with the output preview fragment
func (a *App) handleTransform(w http.ResponseWriter, r *http.Request) {
	sess, ok := a.currentSession(w, r)
	if !ok {
		return
	}

	out, err := a.service.Transform(sess.ID)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNoMapping):
			a.renderError(w, "No column mapping yet. Describe the output and analyze first.")
		case errors.Is(err, core.ErrNoTable):
			a.renderError(w, "The uploaded file had no sheets to transform.")
		default:
			a.renderError(w, "Your session expired. Upload the file again.")
		}
		return
	}

	a.renderTemplate(w, "output_preview.html", buildOutputView(&out))
}

// handleDownload streams the transformed workbook as an attachment. This is
// a plain navigation, not an HTMX swap, so failures are HTTP errors.
func (a *App) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := a.sessionID(r)
	if err != nil {
		http.Error(w, "No session", http.StatusBadRequest)
		return
	}

	data, filename, err := a.service.Export(id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrNoMapping) || errors.Is(err, core.ErrNoTable) {
			status = http.StatusConflict
		} else if errors.Is(err, core.ErrSessionNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, "Export failed", status)
		return
	}

	w.Header().Set("Content-Type", a.service.ExportContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		log.Printf("[UI] Download write failed: %v", err)
	}
}

// handleReset drops the session and tells HTMX to reload the page fresh
func (a *App) handleReset(w http.ResponseWriter, r *http.Request) {
	if id, err := a.sessionID(r); err == nil {
		a.service.Reset(id)
	}
	a.clearSessionCookie(w)
	w.Header().Set("HX-Refresh", "true")
	w.WriteHeader(http.StatusOK)
}

// handleStatus reports provider state and usage totals as JSON
func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"provider":   a.analyzer.Provider(),
		"configured": a.analyzer.Configured(),
		"usage":      a.meter.Snapshot(),
	}); err != nil {
		log.Printf("[UI] Status encode failed: %v", err)
	}
}

// sessionID reads the session ID out of the request cookie
func (a *App) sessionID(r *http.Request) (core.SessionID, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", err
	}
	return core.ParseSessionID(cookie.Value)
}

// currentSession resolves the caller's session, rendering the error
// fragment when there is none
func (a *App) currentSession(w http.ResponseWriter, r *http.Request) (*transform.Session, bool) {
	id, err := a.sessionID(r)
	if err != nil {
		a.renderError(w, "Upload a spreadsheet first.")
		return nil, false
	}
	sess, err := a.service.Get(id)
	if err != nil {
		a.clearSessionCookie(w)
		a.renderError(w, "Your session expired. Upload the file again.")
		return nil, false
	}
	return sess, true
}

func hasUploadExtension(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range uploadExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
