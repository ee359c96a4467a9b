package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/anonto42/yatube/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateRenderer implements echo.Renderer over the embedded templates.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses every page template. Image paths are resolved
// to URLs through media.
func NewTemplateRenderer(media storage.MediaStorage) (*TemplateRenderer, error) {
	funcs := template.FuncMap{
		"mediaURL": media.URL,
		"date": func(t time.Time) string {
			return t.Format("2 January 2006 15:04")
		},
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &TemplateRenderer{templates: tmpl}, nil
}

// Render executes into a buffer first so a failing template never leaves a
// half-written page behind.
func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
