// Package catalog lists the meme templates a user can start from.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"

	"github.com/example/memepanel/assets"
)

// ErrNotFound is returned when no template matches a lookup.
var ErrNotFound = errors.New("catalog: template not found")

// Template is one selectable base image.
type Template struct {
	Name   string   `yaml:"name"`
	Title  string   `yaml:"title"`
	URL    string   `yaml:"url"`
	Top    string   `yaml:"top,omitempty"`
	Bottom string   `yaml:"bottom,omitempty"`
	Tags   []string `yaml:"tags,omitempty"`
}

// label is the text fuzzy matching runs against.
func (t Template) label() string {
	parts := append([]string{t.Name, t.Title}, t.Tags...)
	return strings.Join(parts, " ")
}

// Catalog is an ordered set of templates.
type Catalog struct {
	Templates []Template `yaml:"templates"`
}

// Parse reads a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := map[string]bool{}
	for i, t := range c.Templates {
		if t.Name == "" || t.URL == "" {
			return nil, fmt.Errorf("parse catalog: template %d needs a name and url", i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("parse catalog: duplicate template %q", t.Name)
		}
		seen[t.Name] = true
		if c.Templates[i].Title == "" {
			c.Templates[i].Title = t.Name
		}
	}
	return &c, nil
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(assets.Templates())
}

// Load returns the built-in catalog merged with the file at path, whose
// entries replace built-ins of the same name. An empty path skips the file.
func Load(path string) (*Catalog, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	extra, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Merge(extra)
	return c, nil
}

// Merge adds the templates of other, replacing those with the same name.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil {
		return
	}
	index := map[string]int{}
	for i, t := range c.Templates {
		index[t.Name] = i
	}
	for _, t := range other.Templates {
		if i, ok := index[t.Name]; ok {
			c.Templates[i] = t
			continue
		}
		index[t.Name] = len(c.Templates)
		c.Templates = append(c.Templates, t)
	}
}

// Get returns the template with the exact name.
func (c *Catalog) Get(name string) (Template, bool) {
	for _, t := range c.Templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Find returns templates matching query, best first. An empty query returns
// every template in catalog order.
func (c *Catalog) Find(query string) []Template {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]Template(nil), c.Templates...)
	}
	labels := make([]string, len(c.Templates))
	for i, t := range c.Templates {
		labels[i] = t.label()
	}
	matches := fuzzy.Find(query, labels)
	out := make([]Template, 0, len(matches))
	for _, m := range matches {
		out = append(out, c.Templates[m.Index])
	}
	return out
}

// Lookup resolves name exactly, falling back to the best fuzzy match.
func (c *Catalog) Lookup(name string) (Template, error) {
	if t, ok := c.Get(name); ok {
		return t, nil
	}
	if found := c.Find(name); len(found) > 0 && strings.TrimSpace(name) != "" {
		return found[0], nil
	}
	return Template{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}
