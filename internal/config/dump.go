package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DumpYAML renders the effective configuration as YAML, for the `config`
// command and debugging.
func (c *Config) DumpYAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(out), nil
}
