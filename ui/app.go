// Package ui serves the single-page transform workflow: upload a
// spreadsheet, describe the output, review the derived mapping, download
// the transformed workbook. Pages and fragments render server-side from
// embedded templates; HTMX swaps the fragments in place.
package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tablecast/ai"
	"tablecast/app"
	"tablecast/internal/usage"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// sessionCookie carries the session ID between requests. The cookie is the
// only client-side state; everything else lives in the in-memory store.
const sessionCookie = "tablecast_session"

// App is the web UI application
type App struct {
	router         *chi.Mux
	service        *app.TransformService
	analyzer       *ai.Client
	meter          *usage.Meter
	templates      *template.Template
	maxUploadBytes int64
}

// Config holds UI settings
type Config struct {
	MaxUploadBytes int64
}

// NewApp creates the UI application around the transform service
func NewApp(service *app.TransformService, analyzer *ai.Client, meter *usage.Meter, cfg Config) (*App, error) {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 << 20
	}

	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html", "templates/fragments/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:         chi.NewRouter(),
		service:        service,
		analyzer:       analyzer,
		meter:          meter,
		templates:      templates,
		maxUploadBytes: cfg.MaxUploadBytes,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// Handler returns the root HTTP handler
func (a *App) Handler() http.Handler {
	return a.router
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	// Serve static files straight from the embedded FS; the URL path and
	// the embedded path line up, so no prefix stripping is needed.
	a.router.Handle("/static/*", http.FileServer(http.FS(embeddedFiles)))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Main page
	a.router.Get("/", a.handleIndex)

	// API endpoints; mutations answer with HTMX fragments
	a.router.Post("/api/upload", a.handleUpload)
	a.router.Post("/api/template", a.handleTemplate)
	a.router.Post("/api/analyze", a.handleAnalyze)
	a.router.Post("/api/transform", a.handleTransform)
	a.router.Get("/api/download", a.handleDownload)
	a.router.Post("/api/reset", a.handleReset)
	a.router.Get("/api/status", a.handleStatus)
}

// renderTemplate renders to a buffer first so a template failure becomes a
// clean 500 instead of a half-written page
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("[UI] Template error for %s: %v", templateName, err)
		http.Error(w, "Template rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[UI] Error writing template response: %v", err)
	}
}

// renderError renders the alert fragment. The status stays 200 so HTMX
// swaps the alert into the target pane like any other fragment.
func (a *App) renderError(w http.ResponseWriter, message string) {
	a.renderTemplate(w, "error.html", map[string]interface{}{"Message": message})
}

func (a *App) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (a *App) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
