package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mcdonaldj/zip2hash/internal/extract"
	"github.com/mcdonaldj/zip2hash/internal/zipfmt"
)

type Config struct {
	CommentPolicy string   `yaml:"comment_policy"`
	Exclude       []string `yaml:"exclude"`
	MaxPayload    uint32   `yaml:"max_payload"`
	Verbose       bool     `yaml:"verbose"`
	// Report, when set, is the default path for the JSON run report.
	Report string `yaml:"report,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		CommentPolicy: string(zipfmt.CommentStrict),
		Exclude:       []string{},
	}
}

// header is written above the settings on Save.
const header = `# zip2hash configuration
#
# Entries whose names match an exclude pattern get no hash line.
# To drop macOS resource forks, for example:
#
# exclude:
#   - "__MACOSX/*"

`

func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".zip2hash", "config.yaml")
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Save() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, append([]byte(header), data...), 0644)
}

// Validate rejects settings the extractor cannot honour.
func (c *Config) Validate() error {
	if _, err := zipfmt.ParseCommentPolicy(c.CommentPolicy); err != nil {
		return err
	}
	return nil
}

// Options converts the config into extractor options.
func (c *Config) Options() (extract.Options, error) {
	policy, err := zipfmt.ParseCommentPolicy(c.CommentPolicy)
	if err != nil {
		return extract.Options{}, err
	}
	return extract.Options{
		CommentPolicy: policy,
		Exclude:       append([]string(nil), c.Exclude...),
		MaxPayload:    c.MaxPayload,
	}, nil
}

// ExpandPath expands ~ to home directory
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
