// Package tools builds the gateway's static tool catalog.
//
// The catalog is expanded deterministically from a Declaration: an ordered
// list of (source, category, quota) entries. Given the same declaration the
// catalog always has the same names in the same order, and Count equals the
// sum of all quotas. A built Catalog is read-only and safe for concurrent use.
package tools

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/synapseflow/gateway/pkg/errors"
)

// Descriptor describes one available tool.
type Descriptor struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
}

// Catalog is an immutable, ordered set of tool descriptors.
type Catalog struct {
	version    int
	tools      []Descriptor
	categories []string
	byCategory map[string][]Descriptor
}

// Build expands a declaration into a catalog.
func Build(decl *Declaration) (*Catalog, error) {
	if decl == nil {
		return nil, errors.NewConfigError("catalog", "declaration is nil", nil)
	}

	c := &Catalog{
		version:    decl.Version,
		byCategory: make(map[string][]Descriptor),
	}
	names := make(map[string]string)

	for _, src := range decl.Sources {
		if strings.TrimSpace(src.Name) == "" {
			return nil, errors.NewConfigError("catalog", "source name is empty", nil)
		}

		seen := make(map[string]bool, len(src.Categories))
		for _, cat := range src.Categories {
			if strings.TrimSpace(cat.Name) == "" {
				return nil, errors.NewConfigError("catalog", fmt.Sprintf("source %s has a category without a name", src.Name), nil)
			}
			if seen[cat.Name] {
				return nil, errors.NewConfigError("catalog", fmt.Sprintf("duplicate category %q in source %s", cat.Name, src.Name), nil)
			}
			seen[cat.Name] = true

			quota := cat.size()
			if quota < 0 {
				return nil, errors.NewConfigError("catalog", fmt.Sprintf("negative quota %d for %s:%s", quota, src.Name, cat.Name), nil)
			}
			if quota < len(cat.Tools) {
				return nil, errors.NewConfigError("catalog", fmt.Sprintf("quota %d for %s:%s is smaller than its %d explicit tools", quota, src.Name, cat.Name, len(cat.Tools)), nil)
			}

			key := src.Name + ":" + cat.Name
			descriptors := expand(src.Name, cat, quota)
			for _, d := range descriptors {
				if owner, dup := names[d.Name]; dup {
					return nil, errors.NewConfigError("catalog", fmt.Sprintf("tool name %s declared by both %s and %s", d.Name, owner, key), nil)
				}
				names[d.Name] = key
			}

			c.categories = append(c.categories, key)
			c.byCategory[key] = descriptors
			c.tools = append(c.tools, descriptors...)
		}
	}

	return c, nil
}

// expand synthesizes the descriptors of one category.
func expand(source string, cat CategoryDeclaration, quota int) []Descriptor {
	key := source + ":" + cat.Name
	prefix := stripSpace(cat.Name)

	out := make([]Descriptor, 0, quota)
	for i := 1; i <= quota; i++ {
		if i <= len(cat.Tools) {
			named := cat.Tools[i-1]
			out = append(out, Descriptor{Name: named.Name, Description: named.Description, Category: key})
			continue
		}
		out = append(out, Descriptor{
			Name:        fmt.Sprintf("%sTool%d", prefix, i),
			Description: fmt.Sprintf("%s tool %d from %s", cat.Name, i, source),
			Category:    key,
		})
	}
	return out
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Default builds the catalog from the embedded declaration.
func Default() (*Catalog, error) {
	decl, err := DefaultDeclaration()
	if err != nil {
		return nil, err
	}
	return Build(decl)
}

// Tools returns all descriptors in declaration order.
func (c *Catalog) Tools() []Descriptor {
	out := make([]Descriptor, len(c.tools))
	copy(out, c.tools)
	return out
}

// Count returns the number of tools in the catalog.
func (c *Catalog) Count() int {
	return len(c.tools)
}

// ByCategory returns descriptors grouped by their source:category label.
func (c *Catalog) ByCategory() map[string][]Descriptor {
	out := make(map[string][]Descriptor, len(c.byCategory))
	for k, v := range c.byCategory {
		cp := make([]Descriptor, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// Categories returns the source:category labels in declaration order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Lookup finds a descriptor by name.
func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	for _, d := range c.tools {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Version returns the declaration version the catalog was built from.
func (c *Catalog) Version() int {
	return c.version
}
