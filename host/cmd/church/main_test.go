package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nobonobo/lowpoly-church/glb"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLayoutTable(t *testing.T) {
	out, err := run(t, "layout")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, out, "bench[0]")
	assert.Contains(t, out, "bench.mirror[14]")
}

func TestLayoutYAML(t *testing.T) {
	out, err := run(t, "layout", "--preset", "orbit", "--format", "yaml")
	require.NoError(t, err)

	var placements []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &placements))
	assert.NotEmpty(t, placements)
	assert.Equal(t, "ground", placements[0]["name"])
}

func TestLayoutRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "layout", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestUnknownPreset(t *testing.T) {
	_, err := run(t, "layout", "--preset", "cathedral")
	assert.ErrorContains(t, err, "unknown preset")
}

func TestExportWritesAnimatedModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "church.glb")
	_, err := run(t, "export", "--preset", "orbit", "-o", path, "--orbit-samples", "8")
	require.NoError(t, err)

	doc, err := gltf.Open(path)
	require.NoError(t, err)
	require.Len(t, doc.Animations, 1)
	assert.Equal(t, glb.OrbitAnimation, doc.Animations[0].Name)
	assert.Len(t, doc.Cameras, 1)
}

func TestExportStillHasNoAnimation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "church.glb")
	_, err := run(t, "export", "-o", path, "--no-camera")
	require.NoError(t, err)

	doc, err := gltf.Open(path)
	require.NoError(t, err)
	assert.Empty(t, doc.Animations)
	assert.Empty(t, doc.Cameras)
}

func TestSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "church.png")
	_, err := run(t, "snapshot", "-o", path, "--width", "48", "--height", "32", "--pixel-ratio", "1", "--shadow-map", "64")
	require.NoError(t, err)

	img, err := imgio.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestSnapshotNumberedFrames(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "snapshot", "--preset", "orbit",
		"-o", filepath.Join(dir, "frame-%02d.png"),
		"--frames", "3", "--fps", "10",
		"--width", "24", "--height", "16", "--pixel-ratio", "1", "--shadow-map", "32",
	)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "frame-00.png", entries[0].Name())
	assert.Equal(t, "frame-02.png", entries[2].Name())
}

func TestSnapshotPercentWithoutVerb(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "church-50%.png")
	_, err := run(t, "snapshot", "-o", path, "--frames", "2",
		"--width", "16", "--height", "16", "--pixel-ratio", "1", "--shadow-map", "32",
	)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "church-50%.png", entries[0].Name())
}

func TestSnapshotWatchNeedsLayoutBeforeRendering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "church.png")
	_, err := run(t, "snapshot", "--watch", "-o", path, "--width", "8", "--height", "8")
	assert.ErrorContains(t, err, "--watch requires --layout")
	assert.NoFileExists(t, path)
}

func TestSnapshotValidatesFlags(t *testing.T) {
	_, err := run(t, "snapshot", "--frames", "0")
	assert.ErrorContains(t, err, "--frames")

	_, err = run(t, "snapshot", "--fps", "-1")
	assert.ErrorContains(t, err, "--fps")

	_, err = run(t, "snapshot", "-o", filepath.Join(t.TempDir(), "church.gif"), "--width", "8", "--height", "8")
	assert.ErrorContains(t, err, "unsupported image extension")
}

func TestSnapshotFromLayoutFile(t *testing.T) {
	dir := t.TempDir()
	layoutPath := filepath.Join(dir, "church.toml")
	require.NoError(t, os.WriteFile(layoutPath, []byte(`
name = "tiny"
background = "#336699"

[camera]
halfSize = 2
near = 0.1
far = 50
zoom = 1
position = [3, 3, 3]
target = [0, 0, 0]

[output]
width = 16
height = 12
pixelRatio = 1
`), 0o644))

	out := filepath.Join(dir, "tiny.png")
	_, err := run(t, "snapshot", "--layout", layoutPath, "-o", out)
	require.NoError(t, err)

	img, err := imgio.Open(out)
	require.NoError(t, err)
	r, g, b, _ := img.At(8, 6).RGBA()
	assert.Equal(t, []uint32{0x33, 0x66, 0x99}, []uint32{r >> 8, g >> 8, b >> 8})
}
