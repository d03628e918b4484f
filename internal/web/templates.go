package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageTemplates struct {
	t *template.Template
}

func parseTemplates() (*pageTemplates, error) {
	t, err := template.New("pages").Funcs(template.FuncMap{
		"str":      derefString,
		"datetime": formatCreated,
		"progress": progressPercent,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &pageTemplates{t: t}, nil
}

// render executes a page into a buffer first so a template failure becomes
// a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.tmpl.t.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error().Err(err).Str("template", name).Msg("rendering page failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func formatCreated(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}

func progressPercent(done, total int) int {
	if total == 0 {
		return 0
	}
	return done * 100 / total
}
