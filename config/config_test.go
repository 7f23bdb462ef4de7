package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/psatala/vdisk/vdfs"
)

func TestLoadAppliesDefaultsWithNoFlags(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, int64(vdfs.MinDiskSize), cfg.DiskSize)
	require.False(t, cfg.Verbose)
	require.Equal(t, vdfs.DefaultPrompt, cfg.Prompt)
}

func TestLoadFlagOverridesDefault(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Bool("verbose", true, "")
	flags.String("prompt", "> ", "")
	require.NoError(t, flags.Parse([]string{"--verbose=true", "--prompt", "> "}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	require.True(t, cfg.Verbose)
	require.Equal(t, "> ", cfg.Prompt)
}
