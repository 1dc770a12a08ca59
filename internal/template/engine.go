// Package template renders the user-facing messages of the checkout flow.
package template

import (
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/shopspring/decimal"
)

//go:embed data/*.tmpl
var files embed.FS

type Engine struct {
	tmpl *template.Template
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"join": strings.Join,
}

func NewEngine() (*Engine, error) {
	tmpl, err := template.New("messages").Funcs(funcs).ParseFS(files, "data/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("template.ParseFS: %w", err)
	}

	return &Engine{tmpl: tmpl}, nil
}

func (e *Engine) Render(name string, data any) (string, error) {
	var output strings.Builder
	if err := e.tmpl.ExecuteTemplate(&output, name, data); err != nil {
		return "", fmt.Errorf("tmpl.ExecuteTemplate[%s]: %w", name, err)
	}

	return strings.TrimSpace(output.String()), nil
}

var (
	defaultEngine *Engine
	defaultOnce   sync.Once
)

// Default returns the engine over the embedded templates. The templates are
// compiled into the binary, so a parse failure is a programming error.
func Default() *Engine {
	defaultOnce.Do(func() {
		engine, err := NewEngine()
		if err != nil {
			panic(err)
		}
		defaultEngine = engine
	})
	return defaultEngine
}
