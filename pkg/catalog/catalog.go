// Package catalog holds the quick templates the editor offers.
//
// Templates come from three places: the built-in set, a YAML or JSON file
// with a top-level "templates" list, and any ports.TemplateSource such as the
// loam markdown directory adapter. Later sources override earlier ones by name.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Catalog is an ordered, name-indexed set of templates.
// It is immutable after construction and safe for concurrent reads.
type Catalog struct {
	templates []domain.Template
	index     map[string]int
}

// File is the on-disk shape of a template file.
type File struct {
	Templates []domain.Template `json:"templates" yaml:"templates"`
}

// New builds a catalog. A template whose name was already seen replaces the
// earlier one in place and keeps its spelling of the name.
func New(templates ...domain.Template) *Catalog {
	c := &Catalog{index: make(map[string]int)}
	for _, t := range templates {
		c.put(t)
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return New(Builtin()...)
}

func (c *Catalog) put(t domain.Template) {
	key := normalize(t.Name)
	if i, ok := c.index[key]; ok {
		t.Name = c.templates[i].Name
		c.templates[i] = t
		return
	}
	c.index[key] = len(c.templates)
	c.templates = append(c.templates, t)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// With returns a new catalog with extra templates layered on top.
func (c *Catalog) With(templates ...domain.Template) *Catalog {
	return New(append(c.List(), templates...)...)
}

// Lookup finds a template by name, case-insensitively.
func (c *Catalog) Lookup(name string) (domain.Template, error) {
	i, ok := c.index[normalize(name)]
	if !ok {
		return domain.Template{}, fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, name)
	}
	return c.templates[i], nil
}

// List returns the templates in catalog order.
func (c *Catalog) List() []domain.Template {
	return append([]domain.Template(nil), c.templates...)
}

// Len returns the number of templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}

// LoadFile reads templates from a YAML or JSON file and layers them over the
// built-ins. A missing file yields the built-in catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	templates, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Default().With(templates...), nil
}

// Parse decodes a template file. ext selects JSON for ".json" and YAML otherwise.
func Parse(data []byte, ext string) ([]domain.Template, error) {
	var f File
	var err error
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	for i, t := range f.Templates {
		if err := check(t); err != nil {
			return nil, fmt.Errorf("template %d: %w", i, err)
		}
	}
	return f.Templates, nil
}

// Load layers the templates of every source over the built-ins.
func Load(ctx context.Context, sources ...ports.TemplateSource) (*Catalog, error) {
	return Default().Layer(ctx, sources...)
}

// Layer returns a new catalog with the templates of every source on top, in
// order. Each template is checked before it is added.
func (c *Catalog) Layer(ctx context.Context, sources ...ports.TemplateSource) (*Catalog, error) {
	for _, src := range sources {
		templates, err := src.Templates(ctx)
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		for _, t := range templates {
			if err := check(t); err != nil {
				return nil, err
			}
		}
		c = c.With(templates...)
	}
	return c, nil
}

func check(t domain.Template) error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("template name is required")
	}
	if !t.Category.Valid() && t.Category != "" {
		return fmt.Errorf("%s: %w: %q", t.Name, domain.ErrInvalidCategory, t.Category)
	}
	return nil
}
