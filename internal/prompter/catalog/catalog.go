// Package catalog holds the built-in drawing ideas used when no live
// prompts are available, and the modifiers appended to every suggestion.
package catalog

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"

	"gopkg.in/yaml.v3"
)

type Category string

const (
	Animals   Category = "animals"
	Portrait  Category = "portrait"
	Landscape Category = "landscape"
	Objects   Category = "objects"
	Fantasy   Category = "fantasy"
)

// Order is the order categories are flattened in.
var Order = []Category{Animals, Portrait, Landscape, Objects, Fantasy}

//go:embed catalog.yaml
var defaultYAML []byte

type Catalog struct {
	Categories map[Category][]string `yaml:"categories"`
	Modifiers  []string              `yaml:"modifiers"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Parse reads a catalog from YAML. Every category in Order must be present.
func Parse(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for _, cat := range Order {
		if len(c.Categories[cat]) == 0 {
			return nil, fmt.Errorf("parse catalog: category %q is empty", cat)
		}
	}
	if len(c.Modifiers) == 0 {
		return nil, fmt.Errorf("parse catalog: no modifiers")
	}
	return c, nil
}

// All flattens the catalog in category order.
func (c *Catalog) All() []string {
	var out []string
	for _, cat := range Order {
		out = append(out, c.Categories[cat]...)
	}
	return out
}

// Ideas returns the ideas of a category, or of Portrait if it is unknown.
func (c *Catalog) Ideas(cat Category) []string {
	if ideas, ok := c.Categories[cat]; ok && len(ideas) > 0 {
		return ideas
	}
	return c.Categories[Portrait]
}

func (c *Catalog) RandomIdea(cat Category) string {
	ideas := c.Ideas(cat)
	return ideas[rand.IntN(len(ideas))]
}

func (c *Catalog) RandomModifier() string {
	return c.Modifiers[rand.IntN(len(c.Modifiers))]
}

// CategoryFor maps a free-text subject to a category. Anything that does not
// mention animals, landscapes, objects or fantasy/fiction is a portrait.
func CategoryFor(subject string) Category {
	s := strings.ToLower(subject)
	switch {
	case strings.Contains(s, "animal"):
		return Animals
	case strings.Contains(s, "paisaje"):
		return Landscape
	case strings.Contains(s, "objeto"):
		return Objects
	case strings.Contains(s, "fantasía"), strings.Contains(s, "ficción"):
		return Fantasy
	default:
		return Portrait
	}
}
