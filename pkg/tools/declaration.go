package tools

import (
	_ "embed"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/synapseflow/gateway/pkg/errors"
)

//go:embed catalog.yaml
var defaultDeclaration []byte

// Declaration is the versioned, ordered description of a tool catalog.
type Declaration struct {
	Version int                 `yaml:"version" json:"version"`
	Sources []SourceDeclaration `yaml:"sources" json:"sources"`
}

// SourceDeclaration groups the categories contributed by one tool source.
type SourceDeclaration struct {
	Name       string                `yaml:"name" json:"name"`
	Categories []CategoryDeclaration `yaml:"categories" json:"categories"`
}

// CategoryDeclaration declares how many tools a category contributes.
// A nil Quota means "exactly the explicit tools".
type CategoryDeclaration struct {
	Name  string      `yaml:"name" json:"name"`
	Quota *int        `yaml:"quota,omitempty" json:"quota,omitempty"`
	Tools []NamedTool `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// NamedTool is an explicitly declared tool inside a category.
type NamedTool struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Quota is a convenience for building declarations in code.
func Quota(n int) *int {
	return &n
}

// size returns the number of descriptors the category expands to.
func (c CategoryDeclaration) size() int {
	if c.Quota == nil {
		return len(c.Tools)
	}
	return *c.Quota
}

// DefaultDeclaration returns the embedded catalog declaration.
func DefaultDeclaration() (*Declaration, error) {
	return ParseDeclaration(defaultDeclaration, "catalog.yaml")
}

// LoadDeclaration reads a catalog declaration from a YAML file.
func LoadDeclaration(path string) (*Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("catalog", "reading declaration "+path, err)
	}
	return ParseDeclaration(data, path)
}

// ParseDeclaration decodes a YAML catalog declaration. Unknown keys are rejected.
func ParseDeclaration(data []byte, name string) (*Declaration, error) {
	var decl Declaration
	if err := yaml.UnmarshalWithOptions(data, &decl, yaml.Strict()); err != nil {
		return nil, errors.NewConfigError("catalog", "invalid declaration", errors.WrapParse("yaml", name, err))
	}
	return &decl, nil
}
