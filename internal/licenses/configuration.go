// Package licenses holds the license configuration: named categories of
// licenses and whether licenses in a category belong in a notice.
package licenses

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Sentinel errors returned by Validate.
var (
	ErrUnknownCategory   = errors.New("unknown license category")
	ErrDuplicateCategory = errors.New("duplicate license category")
	ErrDuplicateLicense  = errors.New("duplicate license")
	ErrEmptyLicenseID    = errors.New("empty license id")
)

// Category groups licenses with the same treatment.
type Category struct {
	Name        string `yaml:"name"                             json:"name"`
	Description string `yaml:"description,omitempty"            json:"description,omitempty"`
	// IncludeInNoticeFile defaults to true when unset.
	IncludeInNoticeFile *bool `yaml:"include_in_notice_file,omitempty" json:"include_in_notice_file,omitempty"`
}

// InNotice reports whether licenses in c are listed in a notice.
func (c Category) InNotice() bool {
	return c.IncludeInNoticeFile == nil || *c.IncludeInNoticeFile
}

// License assigns a license id to categories.
type License struct {
	ID         string   `yaml:"id"                   json:"id"`
	Categories []string `yaml:"categories,omitempty" json:"categories,omitempty"`
}

// Configuration is the full license configuration. The zero value is an
// empty, valid configuration.
type Configuration struct {
	Categories []Category `yaml:"categories,omitempty" json:"categories,omitempty"`
	Licenses   []License  `yaml:"licenses,omitempty"   json:"licenses,omitempty"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open license configuration: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes and validates a YAML configuration. Empty input yields an
// empty configuration.
func Parse(r io.Reader) (*Configuration, error) {
	cfg := &Configuration{}

	err := yaml.NewDecoder(r).Decode(cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode license configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that category names and license ids are unique and that
// every referenced category is declared.
func (c *Configuration) Validate() error {
	if c == nil {
		return nil
	}

	known := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if known[cat.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateCategory, cat.Name)
		}

		known[cat.Name] = true
	}

	seen := make(map[string]bool, len(c.Licenses))
	for _, lic := range c.Licenses {
		if lic.ID == "" {
			return ErrEmptyLicenseID
		}

		if seen[lic.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateLicense, lic.ID)
		}

		seen[lic.ID] = true

		for _, name := range lic.Categories {
			if !known[name] {
				return fmt.Errorf("%w: %q (license %s)", ErrUnknownCategory, name, lic.ID)
			}
		}
	}

	return nil
}

// Category returns the category named name.
func (c *Configuration) Category(name string) (Category, bool) {
	if c == nil {
		return Category{}, false
	}

	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}

	return Category{}, false
}

// CategoriesOf returns the sorted category names assigned to id.
func (c *Configuration) CategoriesOf(id string) []string {
	if c == nil {
		return nil
	}

	for _, lic := range c.Licenses {
		if lic.ID == id {
			names := slices.Clone(lic.Categories)
			slices.Sort(names)

			return names
		}
	}

	return nil
}

// IncludeInNotice reports whether id belongs in a notice. Unconfigured
// licenses are included; a configured license is included unless every one
// of its categories opts out.
func (c *Configuration) IncludeInNotice(id string) bool {
	names := c.CategoriesOf(id)
	if len(names) == 0 {
		return true
	}

	for _, name := range names {
		if cat, ok := c.Category(name); !ok || cat.InNotice() {
			return true
		}
	}

	return false
}

// LicensesIn returns the sorted ids assigned to the category named name.
func (c *Configuration) LicensesIn(name string) []string {
	if c == nil {
		return nil
	}

	var ids []string

	for _, lic := range c.Licenses {
		if slices.Contains(lic.Categories, name) {
			ids = append(ids, lic.ID)
		}
	}

	slices.Sort(ids)

	return ids
}
