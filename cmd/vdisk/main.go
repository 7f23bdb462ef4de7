// Command vdisk opens (or creates) a single-file virtual disk and drives
// an interactive shell against it, mirroring the original entry point's
// "<backing_file_name> [<size_in_bytes>]" invocation.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/psatala/vdisk/config"
	"github.com/psatala/vdisk/shell"
	"github.com/psatala/vdisk/store"
	"github.com/psatala/vdisk/vdfs"
	"github.com/psatala/vdisk/vdisk"
	"github.com/psatala/vdisk/vlog"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vdisk <backing_file_name> [<size_in_bytes>]",
		Short:         "Interactive shell over a single-file virtual disk",
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	cmd.Flags().Bool("verbose", false, "log every command and its outcome to stderr")
	cmd.Flags().String("prompt", vdfs.DefaultPrompt, "shell prompt string")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Name of virtual disk file not specified!")
		return nil
	}

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	backingFile := args[0]
	size := cfg.DiskSize
	if len(args) >= 2 {
		parsed, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid disk size %q: %w", args[1], err)
		}
		size = parsed
	}

	log := vlog.New(cfg.Verbose, os.Stderr)

	dev, err := store.Open(afero.NewOsFs(), backingFile, size)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not open virtual disk file!")
		return nil
	}

	engine, err := vdisk.Open(dev, afero.NewOsFs(), log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not initialize virtual disk!")
		return nil
	}

	sh := shell.New(engine, os.Stdin, os.Stdout, os.Stderr, cfg.Prompt, log)
	return sh.Run()
}
