package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nobonobo/lowpoly-church/layout"
)

func newLayoutCommand(root *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the resolved placement of every scene element",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := root.load()
			if err != nil {
				return err
			}
			placements, err := layout.Resolve(l)
			if err != nil {
				return err
			}
			switch format {
			case "table":
				return printPlacements(cmd.OutOrStdout(), placements)
			case "yaml":
				encoder := yaml.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent(2)
				if err := encoder.Encode(placements); err != nil {
					return fmt.Errorf("failed to encode placements: %w", err)
				}
				return encoder.Close()
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or yaml")
	return cmd
}

func printPlacements(w io.Writer, placements []layout.Placement) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPARENT\tSHAPE\tMATERIAL\tPOSITION\tROTATION\tSCALE\tFLAGS")
	for _, p := range placements {
		parent := p.Parent
		if parent == "" {
			parent = "-"
		}
		flags := ""
		if p.CastShadow {
			flags += "c"
		}
		if p.ReceiveShadow {
			flags += "r"
		}
		if p.Hidden {
			flags += "h"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.3f %.3f %.3f\t%.3f %.3f %.3f\t%.3f %.3f %.3f\t%s\n",
			p.Name, parent, p.Shape.Kind, p.Material,
			p.Position.X, p.Position.Y, p.Position.Z,
			p.Rotation.X, p.Rotation.Y, p.Rotation.Z,
			p.Scale.X, p.Scale.Y, p.Scale.Z,
			flags,
		)
	}
	return tw.Flush()
}
