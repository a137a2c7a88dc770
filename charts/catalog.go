// Package charts describes the dashboard's views and renders their results
// as PNG images.
package charts

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

// Kind is how a view is drawn.
type Kind string

const (
	KindBar       Kind = "bar"
	KindPie       Kind = "pie"
	KindHistogram Kind = "histogram"
	KindScatter   Kind = "scatter"
	KindBox       Kind = "box"
	KindMap       Kind = "map"
)

// Spec is the presentation metadata of one view.
type Spec struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Kind        Kind   `yaml:"kind" json:"kind"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	XLabel      string `yaml:"x_label" json:"x_label,omitempty"`
	YLabel      string `yaml:"y_label" json:"y_label,omitempty"`
	Selector    string `yaml:"selector" json:"selector,omitempty"`
}

// TitleFor fills the selection into the title template.
func (s Spec) TitleFor(selection string) string {
	return strings.ReplaceAll(s.Title, "{selection}", selection)
}

// Catalog is the ordered list of views.
type Catalog struct {
	Charts []Spec `yaml:"charts"`

	byID map[string]int
}

//go:embed catalog.yaml
var catalogYAML []byte

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes a YAML catalog. Ids must be present and unique.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("charts: parse catalog: %w", err)
	}

	c.byID = make(map[string]int, len(c.Charts))
	for i, s := range c.Charts {
		if s.ID == "" {
			return nil, fmt.Errorf("charts: parse catalog: entry %d has no id", i)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("charts: parse catalog: duplicate id %q", s.ID)
		}
		c.byID[s.ID] = i
	}
	return &c, nil
}

// Lookup returns the spec for id.
func (c *Catalog) Lookup(id string) (Spec, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Spec{}, false
	}
	return c.Charts[i], true
}
