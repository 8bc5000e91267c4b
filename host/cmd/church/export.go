package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nobonobo/lowpoly-church/glb"
	"github.com/nobonobo/lowpoly-church/rig"
	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/stage"
)

func newExportCommand(root *rootOptions) *cobra.Command {
	var (
		output  string
		samples int
		noCam   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the scene as a binary glTF model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := root.load()
			if err != nil {
				return err
			}
			s, err := scene.Build(l)
			if err != nil {
				return err
			}
			var camera *stage.Camera
			if !noCam {
				camera = stage.NewCamera(l.Camera)
			}
			doc, err := glb.Encode(s, camera)
			if err != nil {
				return err
			}
			if err := glb.Animate(doc, rig.FromLayout(l, s), samples); err != nil {
				return err
			}
			if err := glb.Save(output, doc); err != nil {
				return err
			}
			slog.Info("Exported model",
				slog.String("file", output),
				slog.Int("nodes", len(doc.Nodes)),
				slog.Int("meshes", len(doc.Meshes)),
				slog.Int("animations", len(doc.Animations)),
			)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&output, "output", "o", "church.glb", "output file")
	flags.IntVar(&samples, "orbit-samples", 64, "keyframes per light orbit")
	flags.BoolVar(&noCam, "no-camera", false, "omit the camera node")
	return cmd
}
