// config_file.go loads Config from YAML documents.

package sentryware

import (
	"os"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

type yamlConfig struct {
	Sentry Config `yaml:"sentry"`
}

// LoadConfig parses a YAML document with a top-level "sentry" section.
// Fields absent from the document keep their defaults. The result is validated.
func LoadConfig(b []byte) (Config, error) {
	doc := yamlConfig{Sentry: DefaultConfig()}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return Config{}, errors.Wrap(err, "sentryware: parse config")
	}
	cfg := doc.Sentry
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "sentryware: read config %s", path)
	}
	cfg, err := LoadConfig(b)
	if err != nil {
		return Config{}, errors.Wrapf(err, "sentryware: load config %s", path)
	}
	return cfg, nil
}
