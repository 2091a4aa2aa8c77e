// Package config loads the small side-files the CLI accepts in place of
// repeating flags: a YAML document naming the directive set to scan for.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DirectivesFile is the shape of the --directives-file document:
//
//	directives:
//	  - code-block
//	  - literalinclude
type DirectivesFile struct {
	Directives []string `yaml:"directives"`
}

// LoadDirectiveNames reads and parses path into a target-name list.
func LoadDirectiveNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading directives file %s: %w", path, err)
	}

	var parsed DirectivesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing directives file %s: %w", path, err)
	}
	return parsed.Directives, nil
}
