package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"strings"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

var pages = []string{"project", "snippet", "register"}

// loadTemplates parses one template set per page, each sharing base.tmpl.
// A non-empty dir replaces the embedded templates.
func loadTemplates(dir string) (map[string]*template.Template, error) {
	var fsys fs.FS
	if strings.TrimSpace(dir) != "" {
		fsys = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embeddedTemplates, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}

	funcs := template.FuncMap{
		"errorFor": errorFor,
	}
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(fsys, "base.tmpl", page+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", page, err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}

// errorFor renders the inline error paragraph for field, or nothing.
func errorFor(errs map[string]string, field string) template.HTML {
	msg := errs[field]
	if msg == "" {
		return ""
	}
	return template.HTML(fmt.Sprintf(`<p class="field-error" role="alert" data-error-for="%s">%s</p>`,
		template.HTMLEscapeString(field), template.HTMLEscapeString(msg)))
}
