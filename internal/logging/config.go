// Package logging holds the visual-element (velog) configuration consumed
// when resolving ve(...) literals: a lookup from element name to its logging
// id and optional proto payload type, loaded from a YAML file.
package logging

import (
	"os"

	"github.com/agnivade/levenshtein"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Element is one configured visual element.
type Element struct {
	Name      string `yaml:"name"`
	ID        int64  `yaml:"id"`
	ProtoType string `yaml:"proto_type,omitempty"` // qualified payload message name, optional
}

// Config is the full velog configuration for a compilation.
type Config struct {
	byName map[string]Element
}

// Empty returns a configuration with no elements.
func Empty() *Config {
	return &Config{byName: make(map[string]Element)}
}

// NewConfig builds a configuration from elements, rejecting duplicate names
// and duplicate ids.
func NewConfig(elements []Element) (*Config, error) {
	byName := make(map[string]Element, len(elements))
	byID := make(map[int64]string, len(elements))
	for _, el := range elements {
		if el.Name == "" {
			return nil, errors.New("visual element with empty name")
		}
		if _, ok := byName[el.Name]; ok {
			return nil, errors.Errorf("duplicate visual element name %q", el.Name)
		}
		if prev, ok := byID[el.ID]; ok {
			return nil, errors.Errorf("visual elements %q and %q share id %d", prev, el.Name, el.ID)
		}
		byName[el.Name] = el
		byID[el.ID] = el.Name
	}
	return &Config{byName: byName}, nil
}

// LoadFile reads a velog YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading logging config")
	}
	var doc struct {
		Elements []Element `yaml:"elements"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing logging config")
	}
	return NewConfig(doc.Elements)
}

// Element looks up a configured element by name.
func (c *Config) Element(name string) (Element, bool) {
	el, ok := c.byName[name]
	return el, ok
}

// Suggest returns the configured name closest to the given one, or "" when
// nothing is close enough to be a plausible typo.
func (c *Config) Suggest(name string) string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	return ClosestName(name, names)
}

// ClosestName returns the candidate with the smallest edit distance to name,
// subject to a proportional threshold so wildly different names are not
// suggested. Shared with the record/proto field suggestion paths.
func ClosestName(name string, candidates []string) string {
	best := ""
	bestDist := maxSuggestDistance(name) + 1
	for _, candidate := range candidates {
		d := levenshtein.ComputeDistance(name, candidate)
		if d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best
}

// maxSuggestDistance scales the tolerated edit distance with the name length:
// short names tolerate one edit, longer names up to a third of their length.
func maxSuggestDistance(name string) int {
	d := len(name) / 3
	if d < 1 {
		d = 1
	}
	if d > 4 {
		d = 4
	}
	return d
}
