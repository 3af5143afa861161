package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"text/template"
)

// Renderer is the single extension point for turning a Document into
// bytes for some external consumer (CasADi, SymPy, JAX templates and
// the like). The core package only ever implements the JSON form
// below; anything else is the caller's template, not ours to author.
type Renderer interface {
	Render(doc *Document) ([]byte, error)
}

// JSONRenderer renders the document as indented JSON with the field
// order fixed by the Document struct's tags.
type JSONRenderer struct{}

// Render implements Renderer.
func (JSONRenderer) Render(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	out := buf.Bytes()
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	return out, nil
}

// TemplateRenderer renders a Document through a user-supplied
// text/template file; the template sees the Document struct directly,
// the same way the teacher's own pkg/text Renderer wraps text/template
// around a map of variables. The translator core never implements a
// template engine of its own (non-goal); this is just the seam external
// back-ends plug into.
type TemplateRenderer struct {
	TemplatePath string
}

// Render implements Renderer.
func (t TemplateRenderer) Render(doc *Document) ([]byte, error) {
	body, err := os.ReadFile(t.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("serialize: reading template %s: %w", t.TemplatePath, err)
	}
	tmpl, err := template.New(t.TemplatePath).Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("serialize: parsing template %s: %w", t.TemplatePath, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("serialize: executing template %s: %w", t.TemplatePath, err)
	}
	return buf.Bytes(), nil
}
