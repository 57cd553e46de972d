package main

import (
	"fmt"
	"path/filepath"

	"github.com/mtitz/joinlines/rejoin"
	"github.com/mtitz/joinlines/utils"
	"github.com/spf13/viper"
)

const exampleConfig = `# joinlines defaults, overridden by command line flags
experimental: false
ignore-empty-lines: 0
min-line-length: 0
max-newlines: 0
pagebreaks: 0
verbose: 0
max-size: 16MiB
`

// loadConfigFile reads the YAML file given with --config into v. Keys are
// the long flag names.
func loadConfigFile(v *viper.Viper, path string) error {
	path = utils.ExpandPath(path)
	if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported config type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("could not read config file %s: %w", path, err)
	}
	return nil
}

// resolveConfig builds the engine config from flags, the config file and
// the flag defaults, in that order of precedence.
func resolveConfig(v *viper.Viper) rejoin.Config {
	return rejoin.Config{
		IgnoreEmptyLines: v.GetInt("ignore-empty-lines"),
		MinLineLength:    v.GetInt("min-line-length"),
		MaxNewlines:      v.GetInt("max-newlines"),
		AddPagebreaks:    v.GetInt("pagebreaks"),
		Experimental:     v.GetBool("experimental"),
		Verbosity:        v.GetInt("verbose"),
	}
}
