// Package yaml loads authorfeed configuration files using gopkg.in/yaml.v3.
package yaml

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/smach/authorfeed"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads, defaults and validates the configuration file at path.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadConfig(path string) (*authorfeed.Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, authorfeed.Errorf(authorfeed.ENOTFOUND, "config file %s not found", path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := DecodeConfig(f)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// DecodeConfig reads one YAML document from r, applies defaults and
// validates the result.
func DecodeConfig(r io.Reader) (*authorfeed.Config, error) {
	// Keys absent from the document keep these values.
	cfg := authorfeed.Config{
		Render: authorfeed.RenderConfig{
			Scrolls: authorfeed.DefaultScrolls,
		},
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, authorfeed.Errorf(authorfeed.EINVALID, "failed to parse config: %v", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Encode writes cfg as YAML. It is used to print the effective
// configuration.
func Encode(w io.Writer, cfg *authorfeed.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
