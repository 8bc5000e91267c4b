package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nobonobo/lowpoly-church/layout"
	"github.com/nobonobo/lowpoly-church/schema"
)

type rootOptions struct {
	layoutFile string
	preset     string
	verbose    bool
}

// load reads the layout file when one is given and the named preset
// otherwise.
func (o *rootOptions) load() (*schema.Layout, error) {
	if o.layoutFile != "" {
		return layout.Load(o.layoutFile)
	}
	return layout.Preset(o.preset)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "church",
		Short:         "Build, export and render the low-poly church scene",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.layoutFile, "layout", "l", "", "layout file (.yaml, .yml or .toml)")
	flags.StringVarP(&opts.preset, "preset", "p", string(schema.VariantStill), fmt.Sprintf("embedded layout %v, used without --layout", layout.Presets()))
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug messages")
	cmd.MarkFlagsMutuallyExclusive("layout", "preset")

	cmd.AddCommand(
		newLayoutCommand(opts),
		newExportCommand(opts),
		newSnapshotCommand(opts),
	)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("Error",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
}
