// Package catalog holds the recommendation targets synthesis may reference
// and resolves free-text labels from generated responses onto them.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"lumen/internal/session"
	"lumen/internal/textutil"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// minFuzzyRunes keeps one- and two-letter labels from matching everything.
const minFuzzyRunes = 3

// minSimilarity is the token similarity a label needs to resolve when no
// substring match exists.
const minSimilarity = 0.6

// Target is one valid recommendation destination.
type Target struct {
	ID           string         `yaml:"id" json:"id"`
	Name         string         `yaml:"name" json:"name"`
	Module       string         `yaml:"module" json:"module,omitempty"`
	RelatedKinds []session.Kind `yaml:"related_kinds" json:"relatedKinds,omitempty"`
}

// Catalog is an ordered, id-unique set of targets.
type Catalog struct {
	targets      []Target
	byID         map[string]int
	fingerprints []*textutil.Fingerprint
}

type document struct {
	Targets []Target `yaml:"targets"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog invalid: %v", err))
	}
	return c
}

// Load reads a catalog file, or returns the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(doc.Targets)
}

// New validates targets and builds a catalog.
func New(targets []Target) (*Catalog, error) {
	if len(targets) == 0 {
		return nil, errors.New("catalog has no targets")
	}
	c := &Catalog{byID: make(map[string]int, len(targets))}
	for i, t := range targets {
		t.ID = strings.TrimSpace(t.ID)
		t.Name = strings.TrimSpace(t.Name)
		if t.ID == "" {
			return nil, fmt.Errorf("catalog target %d: id is required", i)
		}
		if t.Name == "" {
			t.Name = t.ID
		}
		for _, k := range t.RelatedKinds {
			if !k.Valid() {
				return nil, fmt.Errorf("catalog target %s: unknown session kind %q", t.ID, k)
			}
		}
		key := c.key(t.ID)
		if _, dup := c.byID[key]; dup {
			return nil, fmt.Errorf("catalog target %s: duplicate id", t.ID)
		}
		c.byID[key] = len(c.targets)
		c.targets = append(c.targets, t)
		c.fingerprints = append(c.fingerprints, textutil.NewFingerprint(t.ID+" "+t.Name))
	}
	return c, nil
}

// key folds s for comparison. Casers are stateful, so each call gets its own.
func (c *Catalog) key(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Targets returns a copy of every target in catalog order.
func (c *Catalog) Targets() []Target {
	return append([]Target(nil), c.targets...)
}

// IDs returns target ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.targets))
	for _, t := range c.targets {
		ids = append(ids, t.ID)
	}
	return ids
}

// Get looks up a target by id, ignoring case.
func (c *Catalog) Get(id string) (Target, bool) {
	idx, ok := c.byID[c.key(id)]
	if !ok {
		return Target{}, false
	}
	return c.targets[idx], true
}

// Resolve maps a generated label onto a target. An explicit id wins, then an
// exact name, then a case-folded substring match in either direction against
// id or name, then the target sharing the most content words. Labels that
// match nothing are rejected.
func (c *Catalog) Resolve(label string) (Target, bool) {
	label = strings.Trim(strings.TrimSpace(label), "`*\"'[]")
	if label == "" {
		return Target{}, false
	}
	if t, ok := c.Get(label); ok {
		return t, true
	}
	folded := c.key(label)
	for _, t := range c.targets {
		if c.key(t.Name) == folded {
			return t, true
		}
	}
	if len([]rune(folded)) < minFuzzyRunes {
		return Target{}, false
	}
	spaced := strings.NewReplacer("-", " ", "_", " ").Replace(folded)
	for _, t := range c.targets {
		id := strings.NewReplacer("-", " ", "_", " ").Replace(c.key(t.ID))
		name := c.key(t.Name)
		if contains(id, spaced) || contains(name, folded) {
			return t, true
		}
	}
	if idx, score := textutil.BestMatch(folded, c.fingerprints); idx >= 0 && score >= minSimilarity {
		return c.targets[idx], true
	}
	return Target{}, false
}

func contains(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// RelatedTo reports whether the target lists kind among its related kinds.
func (t Target) RelatedTo(kind session.Kind) bool {
	for _, k := range t.RelatedKinds {
		if k == kind {
			return true
		}
	}
	return false
}
