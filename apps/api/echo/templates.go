package echoapi

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.gohtml
var pageTemplatesFS embed.FS

type renderer struct {
	tmpl *template.Template
}

var _ echo.Renderer = (*renderer)(nil)

func newRenderer() *renderer {
	return &renderer{
		tmpl: template.Must(template.ParseFS(pageTemplatesFS, "templates/*.gohtml")),
	}
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, ctx echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}
