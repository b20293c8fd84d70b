package web

import (
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"rating": func(r float64) string { return fmt.Sprintf("%.1f", r) },
	"inc":    func(i int) int { return i + 1 },
}

func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
}
