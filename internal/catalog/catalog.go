package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

// Category groups related date ideas
type Category struct {
	Name  string   `yaml:"name" json:"name"`
	Icon  string   `yaml:"icon" json:"icon"`
	Ideas []string `yaml:"ideas" json:"ideas"`
}

// Description explains a date idea and offers tips
type Description struct {
	Idea        string   `yaml:"-" json:"idea"`
	Description string   `yaml:"description" json:"description"`
	Tips        []string `yaml:"tips" json:"tips"`
	Default     bool     `yaml:"-" json:"default"`
}

// Catalog holds the built-in idea categories and idea descriptions
type Catalog struct {
	Categories []Category

	defaultDescription string
	defaultTips        []string
	descriptions       map[string]Description
}

type document struct {
	Categories         []Category             `yaml:"categories"`
	DefaultDescription string                 `yaml:"default_description"`
	DefaultTips        []string               `yaml:"default_tips"`
	Descriptions       map[string]Description `yaml:"descriptions"`
}

var (
	loadOnce sync.Once
	loaded   *Catalog
	loadErr  error
)

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(builtin)
	})
	return loaded, loadErr
}

// Parse reads a catalog document
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(doc.Categories) == 0 {
		return nil, errors.New("catalog has no categories")
	}
	if !strings.Contains(doc.DefaultDescription, "%s") {
		return nil, errors.New("catalog default description must contain %s")
	}

	descriptions := make(map[string]Description, len(doc.Descriptions))
	for idea, d := range doc.Descriptions {
		d.Idea = idea
		descriptions[strings.ToLower(idea)] = d
	}
	return &Catalog{
		Categories:         doc.Categories,
		defaultDescription: doc.DefaultDescription,
		defaultTips:        doc.DefaultTips,
		descriptions:       descriptions,
	}, nil
}

// Describe returns the description for idea, falling back to a generic one
func (c *Catalog) Describe(idea string) Description {
	idea = strings.TrimSpace(idea)
	if d, ok := c.descriptions[strings.ToLower(idea)]; ok {
		d.Tips = append([]string(nil), d.Tips...)
		return d
	}
	return Description{
		Idea:        idea,
		Description: fmt.Sprintf(c.defaultDescription, idea),
		Tips:        append([]string(nil), c.defaultTips...),
		Default:     true,
	}
}

// CategoryOf returns the name of the first category listing idea
func (c *Catalog) CategoryOf(idea string) (string, bool) {
	for _, cat := range c.Categories {
		for _, i := range cat.Ideas {
			if strings.EqualFold(i, idea) {
				return cat.Name, true
			}
		}
	}
	return "", false
}

// Ideas returns every idea across all categories in catalog order
func (c *Catalog) Ideas() []string {
	var out []string
	for _, cat := range c.Categories {
		out = append(out, cat.Ideas...)
	}
	return out
}
