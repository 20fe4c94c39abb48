package html

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"bizdash/html/parts"
)

//go:embed views
var viewsFS embed.FS

// Template is the echo renderer. Templates are named by their path below views/,
// e.g. "dashboard/index.html".
type Template struct {
	Templates *template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.Templates.ExecuteTemplate(w, name, data)
}

// Has reports whether a template with this name exists.
func (t *Template) Has(name string) bool {
	return t.Templates.Lookup(name) != nil
}

// New parses every embedded view. assetsDir is where the critical CSS file lives.
func New(assetsDir string) (*Template, error) {
	return Parse(viewsFS, "views", assetsDir)
}

// Parse loads every .html file below root of fsys.
func Parse(fsys fs.FS, root, assetsDir string) (*Template, error) {
	css := parts.NewCriticalCSS(assetsDir)
	tpl := template.New("").Funcs(Funcs(css))
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".html" {
			return err
		}
		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(p, root+"/")
		if _, err := tpl.New(name).Parse(string(b)); err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Template{Templates: tpl}, nil
}

// Funcs are the helpers available to every view.
func Funcs(css *parts.CriticalCSS) template.FuncMap {
	return template.FuncMap{
		"criticalCSS": func() template.CSS { return template.CSS(css.Get()) },
		"formatDate": func(v interface{}) string {
			switch t := v.(type) {
			case time.Time:
				if t.IsZero() {
					return ""
				}
				return t.Format("02.01.2006 15:04")
			case *time.Time:
				if t == nil {
					return ""
				}
				return t.Format("02.01.2006 15:04")
			}
			return ""
		},
		"price": func(p *float64) string {
			if p == nil {
				return "-"
			}
			return fmt.Sprintf("%.2f", *p)
		},
		"json": func(v interface{}) (template.JS, error) {
			b, err := json.Marshal(v)
			return template.JS(b), err
		},
		"join":     strings.Join,
		"contains": func(list []string, s string) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
	}
}
