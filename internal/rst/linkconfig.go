package rst

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LinkType names one option key whose value is treated as a
// comma-separated list of target directive ids.
type LinkType struct {
	Name string `toml:"name"`
}

// LinkConfig is the parsed form of the `[[links]]` TOML file. An absent
// file maps to an empty config: directives are still parsed and
// emitted, just never linked.
type LinkConfig struct {
	Links []LinkType `toml:"links"`
}

// LoadLinkConfig reads and parses path. A missing file is not an error:
// it yields an empty LinkConfig.
func LoadLinkConfig(path string) (LinkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return LinkConfig{}, nil
		}
		return LinkConfig{}, fmt.Errorf("reading link config %s: %w", path, err)
	}

	var cfg LinkConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return LinkConfig{}, fmt.Errorf("parsing link config %s: %w", path, err)
	}
	return cfg, nil
}
