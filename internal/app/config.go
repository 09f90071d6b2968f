package app

import (
	"github.com/drogueria/backoffice/internal/infra/config"
)

// LoadConfig loads application configuration. An explicit path takes
// precedence over the default search locations.
func LoadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
