package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/heatwire/internal/heat"
	"github.com/san-kum/heatwire/internal/render"
	"github.com/san-kum/heatwire/internal/sim"
)

func renderCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	for _, cmd := range mediaCommands() {
		if cmd.Name() == "render" {
			require.NoError(t, cmd.ParseFlags(args))
			return cmd
		}
	}
	t.Fatal("render command not registered")
	return nil
}

func TestRenderSettingsLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wire.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  stride: 5\n  format: png\n"), 0644))

	tests := []struct {
		name       string
		args       []string
		wantStride int
		wantFormat string
		wantFPS    int
	}{
		{"defaults", nil, 1, "gif", 20},
		{"preset", []string{"--preset", "fine"}, 10, "gif", 20},
		{"flag over preset", []string{"--preset", "fine", "--stride", "3", "--fps", "12"}, 3, "gif", 12},
		{"file over preset", []string{"--preset", "insulated", "--config", path}, 5, "png", 20},
		{"flag over file", []string{"--config", path, "--format", "mjpeg"}, 5, "mjpeg", 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := resolveConfig(renderCommand(t, tt.args...))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStride, cfg.Render.Stride)
			assert.Equal(t, tt.wantFormat, cfg.Render.Format)
			assert.Equal(t, tt.wantFPS, cfg.Render.FPS)
		})
	}
}

func TestRenderFlagsValidated(t *testing.T) {
	for _, args := range [][]string{
		{"--format", "mjpeg", "--fps", "0"},
		{"--fps", "101"},
		{"--stride", "0"},
		{"--format", "webm"},
		{"--width", "10"},
	} {
		_, err := resolveConfig(renderCommand(t, args...))
		assert.ErrorIs(t, err, heat.ErrInvalidConfiguration, "args %v", args)
	}
}

func TestPresetStrideReachesExport(t *testing.T) {
	cfg, err := resolveConfig(renderCommand(t, "--preset", "fine", "--format", "png", "--width", "300", "--height", "300"))
	require.NoError(t, err)

	p := heat.Params{Length: 1.25, Points: 5, Dt: 0.01, Alpha: 0.01, HotEnd: 100, Steps: 30}
	result, err := sim.New(p).Run(context.Background())
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "frames")
	n, err := renderResult(context.Background(), result, cfg.Render, out)
	require.NoError(t, err)

	// 31 snapshots at stride 10: 0, 10, 20, 30
	assert.Equal(t, len(render.FrameIndices(31, 10)), n)
	assert.Equal(t, 4, n)
	files, err := filepath.Glob(filepath.Join(out, "frame_*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 4)
}
