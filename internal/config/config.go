// Package config holds the values the repair rules write, loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = ".uirepair.yaml"

// Config is the top-level uirepair configuration.
type Config struct {
	Footer   FooterConfig   `yaml:"footer"`
	Navbar   NavbarConfig   `yaml:"navbar"`
	Discover DiscoverConfig `yaml:"discover"`
}

// FooterConfig controls footer section, grid, column and link defaults.
type FooterConfig struct {
	Background     string `yaml:"background"`
	Padding        string `yaml:"padding"`
	LinkColor      string `yaml:"link_color"`
	LinkHoverColor string `yaml:"link_hover_color"`
	LinkFontSize   string `yaml:"link_font_size"`
	// LinkColorVars are theme variables known to resolve to an unreadable
	// color on the dark footer background.
	LinkColorVars []string `yaml:"link_color_vars"`

	GridColumns       string `yaml:"grid_columns"`
	GridTabletColumns string `yaml:"grid_tablet_columns"`
	GridMobileColumns string `yaml:"grid_mobile_columns"`
	GridGap           string `yaml:"grid_gap"`
	GridMaxWidth      string `yaml:"grid_max_width"`

	ColumnGap       string `yaml:"column_gap"`
	BrandBasis      string `yaml:"brand_basis"`
	LinkColumnBasis string `yaml:"link_column_basis"`
	ColumnMinWidth  string `yaml:"column_min_width"`
}

// NavbarConfig controls navbar styling and the synthesized links container.
type NavbarConfig struct {
	Background     string `yaml:"background"`
	BackdropFilter string `yaml:"backdrop_filter"`
	ZIndex         int    `yaml:"z_index"`
	Padding        string `yaml:"padding"`
	LinksGap       string `yaml:"links_gap"`
}

// DiscoverConfig controls which files the CLI treats as projects.
type DiscoverConfig struct {
	Extensions []string `yaml:"extensions"`
	SkipFiles  []string `yaml:"skip_files"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadFile reads a YAML configuration file. Unset fields take defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func (c *Config) applyDefaults() {
	f := &c.Footer
	setDefault(&f.Background, "#111827")
	setDefault(&f.Padding, "64px 24px 32px")
	setDefault(&f.LinkColor, "rgba(255, 255, 255, 0.7)")
	setDefault(&f.LinkHoverColor, "#ffffff")
	setDefault(&f.LinkFontSize, "14px")
	if len(f.LinkColorVars) == 0 {
		f.LinkColorVars = []string{"--primary", "--primary-foreground", "--foreground", "--accent"}
	}
	setDefault(&f.GridColumns, "repeat(4, 1fr)")
	setDefault(&f.GridTabletColumns, "repeat(2, 1fr)")
	setDefault(&f.GridMobileColumns, "1fr")
	setDefault(&f.GridGap, "48px")
	setDefault(&f.GridMaxWidth, "1200px")
	setDefault(&f.ColumnGap, "12px")
	setDefault(&f.BrandBasis, "35%")
	setDefault(&f.LinkColumnBasis, "18%")
	setDefault(&f.ColumnMinWidth, "160px")

	n := &c.Navbar
	setDefault(&n.Background, "rgba(255, 255, 255, 0.85)")
	setDefault(&n.BackdropFilter, "blur(12px)")
	if n.ZIndex <= 0 {
		n.ZIndex = 50
	}
	setDefault(&n.Padding, "16px 32px")
	setDefault(&n.LinksGap, "32px")

	d := &c.Discover
	if len(d.Extensions) == 0 {
		d.Extensions = []string{".json"}
	}
	if d.SkipFiles == nil {
		d.SkipFiles = []string{"package.json", "package-lock.json", "tsconfig.json", "composer.json"}
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
