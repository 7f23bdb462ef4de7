// Package config loads ambient settings (initial size, verbosity, prompt
// text) from flags, VDISK_-prefixed environment variables, an optional
// config file, and defaults, using viper the way the teacher's CLI layer does.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/psatala/vdisk/vdfs"
)

// Config holds the resolved settings for one run of the shell. The backing
// file name is not part of Config: it is always a positional argument
// (spec.md §6 requires a diagnostic-and-exit when it's omitted, so there is
// no default to fall back to).
type Config struct {
	DiskSize int64  `mapstructure:"disk_size"`
	Verbose  bool   `mapstructure:"verbose"`
	Prompt   string `mapstructure:"prompt"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("disk_size", int64(vdfs.MinDiskSize))
	v.SetDefault("verbose", false)
	v.SetDefault("prompt", vdfs.DefaultPrompt)
}

// BindFlags wires the command line flags used by cmd/vdisk into v, so flag
// values take precedence over a config file, which in turn takes
// precedence over the defaults set above. A flag counts only once it has
// been set on the command line; an unset flag's own default is not used
// in place of the defaults above.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	return v.BindPFlags(flags)
}

// Load builds a Viper instance bound to flags, reads an optional
// .vdisk.yaml/.vdisk.json from the current directory (silently ignored if
// absent), and decodes the result into a Config.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("VDISK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(".vdisk")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, Fatal(err)
		}
	}

	if flags != nil {
		if err := BindFlags(v, flags); err != nil {
			return nil, Fatal(err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, Fatal(err)
	}
	return &cfg, nil
}
