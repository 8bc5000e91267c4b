package main

import (
	"image/color"
	"log/slog"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mokiat/lacking/game/asset/dsl"

	"github.com/nobonobo/lowpoly-church/layout"
	"github.com/nobonobo/lowpoly-church/scene"
	"github.com/nobonobo/lowpoly-church/schema"
)

// churchModelPath is written by "church export".
const churchModelPath = "resources/raw/models/church.glb"

var church = func() *scene.Scene {
	name := os.Getenv("CHURCH_PRESET")
	if name == "" {
		name = string(schema.VariantStill)
	}
	l, err := layout.Preset(name)
	if err != nil {
		slog.Error("Failed to load layout", "preset", name, "err", err)
		os.Exit(1)
	}
	s, err := scene.Build(l)
	if err != nil {
		slog.Error("Failed to build scene", "preset", name, "err", err)
		os.Exit(1)
	}
	return s
}()

func linearRGB(c color.RGBA) (float64, float64, float64) {
	col, _ := colorful.MakeColor(c)
	return col.LinearRgb()
}

var _ = func() any {
	sky := dsl.CreateSky(dsl.CreateColorSkyMaterial(
		dsl.RGB(linearRGB(church.Background)),
	))

	ambientImage := dsl.CubeImageFromEquirectangular(
		dsl.OpenImage(ambientImagePath),
	)
	reflectionTexture := dsl.CreateCubeMipmapTexture(
		dsl.ReflectionCubeImages(dsl.ResizedCubeImage(ambientImage, dsl.Const(32)), dsl.SetSampleCount(dsl.Const(20))),
		dsl.SetMipmapping(dsl.Const(true)),
	)
	refractionTexture := dsl.CreateCubeTexture(
		dsl.IrradianceCubeImage(dsl.ResizedCubeImage(ambientImage, dsl.Const(32)), dsl.SetSampleCount(dsl.Const(20))),
	)
	ambientLight := dsl.CreateAmbientLight(
		dsl.SetReflectionTexture(reflectionTexture),
		dsl.SetRefractionTexture(refractionTexture),
	)

	// the directional light comes with the model, below the LightRig
	// pivot that the viewer rotates
	return dsl.Save("church.dat", dsl.CreateModel(
		dsl.AppendModel(dsl.OpenGLTFModel(churchModelPath)),
		dsl.AddNode(dsl.CreateNode("Sky",
			dsl.AddAttachment(sky),
		)),
		dsl.AddNode(dsl.CreateNode("AmbientLight",
			dsl.AddAttachment(ambientLight),
		)),
	))
}()
