package vcbanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bodgit/vcbanner/label"
	"gopkg.in/yaml.v3"
)

const (
	// ManifestName is the name of the optional manifest in a template
	// directory
	ManifestName = "templates.yaml"

	defaultWorkers = 4
)

// Chunks names the textures playing each role in a template
type Chunks struct {
	Label      string `yaml:"label"`
	Footer     string `yaml:"footer"`
	Background string `yaml:"background"`
}

// DefaultChunks returns the texture names used by the stock templates
func DefaultChunks() Chunks {
	return Chunks{
		Label:      "COMMON1",
		Footer:     "COMMON2",
		Background: "COMMON3",
	}
}

// Config describes a template set and how to build from it
type Config struct {
	Regions []Region `yaml:"regions"`
	Chunks  Chunks   `yaml:"chunks"`
	// Font is a TrueType or OpenType font used instead of the bundled one,
	// relative to the template directory
	Font    string `yaml:"font,omitempty"`
	Workers int    `yaml:"workers,omitempty"`
	// Background pads the label when its aspect ratio doesn't match
	Background *Color `yaml:"background,omitempty"`
	// Shell, if set, fills the background texture with a solid colour
	Shell *Color `yaml:"shell,omitempty"`

	// Templates is the directory holding the templates
	Templates string `yaml:"-"`
	// Output is the directory banners are written to, nothing is written
	// if it's empty
	Output string `yaml:"-"`
}

// DefaultConfig returns the configuration used when there's no manifest
func DefaultConfig() *Config {
	c := new(Config)
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if len(c.Regions) == 0 {
		c.Regions = DefaultRegions()
	}

	d := DefaultChunks()
	if c.Chunks.Label == "" {
		c.Chunks.Label = d.Label
	}
	if c.Chunks.Footer == "" {
		c.Chunks.Footer = d.Footer
	}
	if c.Chunks.Background == "" {
		c.Chunks.Background = d.Background
	}

	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.Background == nil {
		c.Background = &Color{NRGBA: label.DefaultBackground}
	}
}

func (c *Config) validate() error {
	seen := make(map[string]struct{})
	for _, r := range c.Regions {
		if r.Code == "" {
			return errors.New("vcbanner: region without a code")
		}
		if _, ok := seen[r.Code]; ok {
			return fmt.Errorf("vcbanner: duplicate region %q", r.Code)
		}
		seen[r.Code] = struct{}{}
	}
	return nil
}

// LoadConfig reads the manifest at path, or if path is empty, the manifest
// in the template directory. A missing manifest results in the defaults.
func LoadConfig(templates, path string) (*Config, error) {
	c := new(Config)

	if path == "" {
		path = filepath.Join(templates, ManifestName)
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("vcbanner: unable to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	c.Templates = templates
	c.setDefaults()

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Filter restricts the configured regions to those with the given codes,
// keeping the configured order
func (c *Config) Filter(codes ...string) error {
	if len(codes) == 0 {
		return nil
	}

	want := make(map[string]bool)
	for _, code := range codes {
		want[code] = false
	}

	var regions []Region
	for _, r := range c.Regions {
		if _, ok := want[r.Code]; ok {
			regions = append(regions, r)
			want[r.Code] = true
		}
	}

	for _, code := range codes {
		if !want[code] {
			return fmt.Errorf("vcbanner: unknown region %q", code)
		}
	}

	c.Regions = regions
	return nil
}
