package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var builtinTemplates embed.FS

// DeliveryTemplate is the built-in template for the message carrying a document.
const DeliveryTemplate = "delivery.txt"

// Renderer executes plain-text message templates with YAML frontmatter.
// Parsed templates are cached.
type Renderer struct {
	fs    fs.FS
	dir   string
	cache map[string]*cachedTemplate
	mu    sync.RWMutex
}

type cachedTemplate struct {
	metadata map[string]any
	tmpl     *template.Template
}

// RenderResult is a rendered body plus the template metadata.
type RenderResult struct {
	Metadata map[string]any
	Text     string
}

// Subject returns the "Subject" metadata value, if any.
func (r *RenderResult) Subject() string {
	s, _ := r.Metadata["Subject"].(string)
	return s
}

// NewRenderer creates a renderer reading templates from dir within fsys.
func NewRenderer(fsys fs.FS, dir string) *Renderer {
	if dir == "" {
		dir = "."
	}
	return &Renderer{fs: fsys, dir: dir, cache: make(map[string]*cachedTemplate)}
}

// DefaultRenderer returns a renderer over the built-in templates.
func DefaultRenderer() *Renderer {
	return NewRenderer(builtinTemplates, "templates")
}

// Render executes the named template with data.
func (r *Renderer) Render(name string, data any) (*RenderResult, error) {
	cached, err := r.lookup(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := cached.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	return &RenderResult{Metadata: cached.metadata, Text: buf.String()}, nil
}

func (r *Renderer) lookup(name string) (*cachedTemplate, error) {
	r.mu.RLock()
	cached, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.dir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	cached = &cachedTemplate{metadata: parsed.Metadata, tmpl: tmpl}
	r.cache[name] = cached
	return cached, nil
}
