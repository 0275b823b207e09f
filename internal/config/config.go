// Package config loads and validates the site configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration loaded from inkwell.yaml.
type Config struct {
	Site        SiteConfig   `yaml:"site"`
	Content     ContentConfig `yaml:"content"`
	Styles      StylesConfig `yaml:"styles"`
	Passthrough []string     `yaml:"passthrough,omitempty"`
	Output      OutputConfig `yaml:"output"`
	Serve       ServeConfig  `yaml:"serve,omitempty"`
}

// SiteConfig describes site-wide metadata exposed to templates and feeds.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Author      string `yaml:"author,omitempty"`
	Language    string `yaml:"language,omitempty"`
	ImagePath   string `yaml:"image_path,omitempty"` // URL prefix for the image shortcode
}

// ContentConfig locates content and layout sources relative to the site root.
type ContentConfig struct {
	Dir        string `yaml:"dir,omitempty"`
	PostsDir   string `yaml:"posts_dir,omitempty"` // relative to Dir
	LayoutsDir string `yaml:"layouts_dir,omitempty"`
}

// StylesConfig declares the CSS pipeline: SCSS sources compiled by an
// external sass binary, then minified in-process.
type StylesConfig struct {
	SassBin string       `yaml:"sass_bin,omitempty"`
	Sheets  []StyleSheet `yaml:"sheets,omitempty"`
}

// StyleSheet maps one SCSS entry point to an output path.
type StyleSheet struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// OutputConfig controls the generated site directory.
type OutputConfig struct {
	Directory string `yaml:"directory,omitempty"`
	Clean     bool   `yaml:"clean,omitempty"`
}

// ServeConfig controls the local preview server.
type ServeConfig struct {
	Port         int      `yaml:"port,omitempty"`
	Metrics      bool     `yaml:"metrics,omitempty"`
	RebuildEvery Duration `yaml:"rebuild_every,omitempty"` // periodic rebuild so future-dated posts publish
}

// Duration wraps time.Duration with YAML support for "10m" style strings.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load reads configuration from the given file, expanding ${VAR}
// references from the environment (a .env file is loaded first when
// present, matching local development workflows).
func Load(configPath string) (*Config, error) {
	// Best effort; absence of .env is the common case.
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Inkwell Site"
	}
	if c.Site.Language == "" {
		c.Site.Language = "en"
	}
	if c.Site.ImagePath == "" {
		c.Site.ImagePath = "/images"
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "content"
	}
	if c.Content.PostsDir == "" {
		c.Content.PostsDir = "posts"
	}
	if c.Content.LayoutsDir == "" {
		c.Content.LayoutsDir = "layouts"
	}
	if c.Styles.SassBin == "" {
		c.Styles.SassBin = "sass"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "./public"
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = 1414
	}
	if c.Serve.RebuildEvery == 0 {
		c.Serve.RebuildEvery = Duration(10 * time.Minute)
	}
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Config{
		Site: SiteConfig{
			Title:       "My Blog",
			Description: "Personal blog and resume",
			BaseURL:     "https://example.com",
			Author:      "Jane Doe",
		},
		Styles: StylesConfig{
			Sheets: []StyleSheet{{Source: "styles/main.scss", Target: "css/main.css"}},
		},
		Passthrough: []string{"static", "manifest.json", "resume.pdf"},
		Output:      OutputConfig{Directory: "./public", Clean: true},
	}
	example.applyDefaults()

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("marshal example config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
