package layout

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/nobonobo/lowpoly-church/schema"
)

//go:embed presets/*.yaml
var presets embed.FS

type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// FormatOf picks the decoder by file extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("unsupported layout file extension %q", filepath.Ext(name))
	}
}

// Parse decodes a layout, rejecting unknown keys, and fills in defaults.
// The result is not validated.
func Parse(data []byte, format Format) (*schema.Layout, error) {
	var result schema.Layout
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode yaml layout: %w", err)
		}
	case FormatTOML:
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode toml layout: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown layout format %d", format)
	}
	ApplyDefaults(&result)
	return &result, nil
}

// Load reads, decodes and validates a layout file.
func Load(filename string) (*schema.Layout, error) {
	return LoadFS(os.DirFS(filepath.Dir(filename)), filepath.Base(filename))
}

// LoadFS is like Load but reads from fsys.
func LoadFS(fsys fs.FS, name string) (*schema.Layout, error) {
	format, err := FormatOf(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout %q: %w", name, err)
	}
	result, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", name, err)
	}
	if err := Validate(result); err != nil {
		return nil, fmt.Errorf("layout %q: %w", name, err)
	}
	return result, nil
}

// Preset returns one of the embedded layouts by variant name.
func Preset(name string) (*schema.Layout, error) {
	filename := path.Join("presets", name+".yaml")
	if _, err := fs.Stat(presets, filename); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return LoadFS(presets, filename)
}

// Presets lists the embedded layout names.
func Presets() []string {
	entries, err := fs.ReadDir(presets, "presets")
	if err != nil {
		return nil
	}
	var result []string
	for _, entry := range entries {
		result = append(result, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	slices.Sort(result)
	return result
}

// ApplyDefaults fills in zero values with the values three.js would use.
func ApplyDefaults(l *schema.Layout) {
	if l.Variant == "" {
		l.Variant = schema.VariantStill
	}
	if l.Background == "" {
		l.Background = "white"
	}
	if l.Fog.Color == "" {
		l.Fog.Color = l.Background
	}
	if l.Camera.HalfSize == 0 {
		l.Camera.HalfSize = 1.0
	}
	if l.Camera.Far == 0 {
		l.Camera.Far = 2000.0
	}
	if l.Camera.Near == 0 {
		l.Camera.Near = 0.1
	}
	if l.Camera.Zoom == 0 {
		l.Camera.Zoom = 1.0
	}
	if l.Controls.DampingFactor == 0 {
		l.Controls.DampingFactor = 0.05
	}
	if l.Controls.RotateSpeed == 0 {
		l.Controls.RotateSpeed = 1.0
	}
	if l.Controls.ZoomSpeed == 0 {
		l.Controls.ZoomSpeed = 1.0
	}
	if l.Controls.MaxZoom == 0 {
		l.Controls.MaxZoom = 100.0
	}
	for name, material := range l.Materials {
		if material.Kind == "" {
			material.Kind = schema.MaterialStandard
		}
		if material.Color == "" {
			material.Color = "white"
		}
		if material.Kind == schema.MaterialStandard && material.Roughness == 0 {
			material.Roughness = 1.0
		}
		l.Materials[name] = material
	}
	for i := range l.Rows {
		if l.Rows[i].Axis == "" {
			l.Rows[i].Axis = schema.AxisX
		}
	}
	if l.Lighting.Ambient.Color == "" {
		l.Lighting.Ambient.Color = "white"
	}
	if l.Lighting.Directional.Color == "" {
		l.Lighting.Directional.Color = "white"
	}
	if l.Output.PixelRatio == 0 {
		l.Output.PixelRatio = 1.0
	}
}
