package model

import (
	"github.com/rotisserie/eris"
)

// Field is one entry in a catalog tier: a canonical name plus the
// human description fed to the extraction prompt.
type Field struct {
	Name        string
	Description string
}

// Tier is a named subset of a catalog. The first tier is always
// active; later tiers activate per request based on trigger
// conditions, and activation is one-way within a request.
type Tier struct {
	Name   string
	Fields []Field
}

// Catalog is an ordered set of tiers. Canonical names are unique
// across the whole catalog; NewCatalog enforces this.
type Catalog struct {
	tiers []Tier
}

// NewCatalog builds a catalog and validates cross-tier name uniqueness.
func NewCatalog(tiers ...Tier) (*Catalog, error) {
	seen := make(map[string]string)
	for _, t := range tiers {
		for _, f := range t.Fields {
			if prev, ok := seen[f.Name]; ok {
				return nil, eris.Errorf("catalog: field %q appears in tiers %q and %q", f.Name, prev, t.Name)
			}
			seen[f.Name] = t.Name
		}
	}
	return &Catalog{tiers: tiers}, nil
}

// MustCatalog is NewCatalog for static catalogs defined in code.
func MustCatalog(tiers ...Tier) *Catalog {
	c, err := NewCatalog(tiers...)
	if err != nil {
		panic(err)
	}
	return c
}

// Names returns canonical names in tier-then-definition order. When
// extended is false only the first tier contributes; when true every
// tier does. The order is stable so fuzzy tie-breaks are deterministic.
func (c *Catalog) Names(extended bool) []string {
	var names []string
	for i, t := range c.tiers {
		if i > 0 && !extended {
			break
		}
		for _, f := range t.Fields {
			names = append(names, f.Name)
		}
	}
	return names
}

// Fields returns the fields of every tier in order, for prompt context.
func (c *Catalog) Fields() []Field {
	var fields []Field
	for _, t := range c.tiers {
		fields = append(fields, t.Fields...)
	}
	return fields
}

// ExtendedNames returns the names that belong to tiers beyond the
// first. Used to detect when a parsed field forces tier activation.
func (c *Catalog) ExtendedNames() map[string]bool {
	names := make(map[string]bool)
	for i, t := range c.tiers {
		if i == 0 {
			continue
		}
		for _, f := range t.Fields {
			names[f.Name] = true
		}
	}
	return names
}
