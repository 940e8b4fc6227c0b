package main

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livewire/internal/models"
	"livewire/internal/testimage"
	"livewire/pkg/config"
	"livewire/pkg/imageio"
	"livewire/pkg/tracing"
)

func writeSquarePNG(t *testing.T, dir string) string {
	t.Helper()
	img := &imageio.Image{Width: 20, Height: 20, Pix: testimage.Square(20, 20, 5, 5, 14, 14)}
	path := filepath.Join(dir, "square.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img.RGBA()))
	return path
}

func TestRunInitConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "cfg", "livewire.yaml")
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), []string{"-config", cfgPath, "-init-config"}, &out))
	assert.Contains(t, out.String(), cfgPath)

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestRunSingleImage(t *testing.T) {
	dir := t.TempDir()
	image := writeSquarePNG(t, dir)
	results := filepath.Join(dir, "results.yaml")
	overlay := filepath.Join(dir, "overlay.png")
	featuresDir := filepath.Join(dir, "features")

	err := run(context.Background(), []string{
		"-config", filepath.Join(dir, "absent.yaml"),
		"-image", image,
		"-anchors", "5,5;14,5;14,14;5,14",
		"-close",
		"-output", results,
		"-overlay", overlay,
		"-extract-features", featuresDir,
		"-cores", "1",
	}, io.Discard)
	require.NoError(t, err)

	got, err := tracing.ReadResults(results)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Closed)
	assert.Equal(t, models.Pt(5, 5), got[0].Path.Points[0])

	for _, f := range []string{overlay, filepath.Join(featuresDir, "feature_gradient.png")} {
		_, err := os.Stat(f)
		assert.NoError(t, err, f)
	}
}

func TestRunJobFile(t *testing.T) {
	dir := t.TempDir()
	image := writeSquarePNG(t, dir)
	jobs := filepath.Join(dir, "jobs.yaml")
	data := "jobs:\n  - name: top\n    image: " + image + "\n    anchors:\n      - {x: 5, y: 5}\n      - {x: 14, y: 5}\n"
	require.NoError(t, os.WriteFile(jobs, []byte(data), 0644))
	results := filepath.Join(dir, "out", "results.yaml")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-config", filepath.Join(dir, "absent.yaml"), "-jobs", jobs, "-output", results}, &out))
	assert.Contains(t, out.String(), "top:")

	got, err := tracing.ReadResults(results)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "top", got[0].Name)
	assert.False(t, got[0].Closed)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	absent := filepath.Join(dir, "absent.yaml")

	err := run(context.Background(), []string{"-config", absent}, io.Discard)
	assert.ErrorIs(t, err, errUsage)

	err = run(context.Background(), []string{"-config", absent, "-image", "x.png", "-anchors", "1;2"}, io.Discard)
	assert.Error(t, err)

	err = run(context.Background(), []string{"-config", absent, "-cores", "-3", "-bogus"}, io.Discard)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("search:\n  granularityBits: 40\n"), 0644))
	err = run(context.Background(), []string{"-config", bad, "-image", "x.png", "-anchors", "1,2"}, io.Discard)
	assert.ErrorContains(t, err, "invalid configuration")
}
