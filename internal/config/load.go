//go:build !tinygo

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "JCBOARD_CONFIG"

// DefaultPath is used when neither a flag nor EnvPath names a file.
const DefaultPath = "jcboard.yaml"

// LoadError reports a config file that exists but cannot be used.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("config %s: %v", e.Path, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// ResolvePath returns path, or EnvPath's value, or DefaultPath.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path over Default(). A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, &LoadError{Path: path, Err: err}
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, &LoadError{Path: path, Err: err}
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, keeping fields the document leaves out.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	return cfg.Validate()
}

// Save writes cfg as YAML. It refuses to overwrite an existing file.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
