package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/recera/flowcanvas/pkg/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "localhost:5173", cfg.Addr())
	assert.Equal(t, flow.DefaultSeed(), cfg.Seed())
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
canvas:
  accent: "#ff0000"
nodes:
  - id: 1
    label: first
    x: 10
    y: -5
  - id: 2
    x: 40
    y: 40
debug: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:9000", cfg.Addr())
	assert.Equal(t, "Flow Canvas", cfg.Canvas.Title)
	assert.Equal(t, "#ff0000", cfg.Theme().Accent)
	assert.Equal(t, "#1c1917", cfg.Theme().Background)
	assert.True(t, cfg.Debug)

	seed := cfg.Seed()
	require.Len(t, seed, 2)
	assert.Equal(t, flow.NewNode(1, "first", 10, -5), seed[0])
	assert.Equal(t, flow.DefaultLabel, seed[1].Label)
}

func TestLoad_RejectsDuplicateNodes(t *testing.T) {
	path := writeConfig(t, `
nodes:
  - id: 3
  - id: 3
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, flow.ErrDuplicateNode))
}

func TestLoad_RejectsNegativeNodeID(t *testing.T) {
	path := writeConfig(t, `
nodes:
  - id: -1
    label: hidden
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, flow.ErrInvalidNodeID)
}

func TestLoad_RejectsBadPort(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 70000\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "nodes: [\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Nodes = append(cfg.Nodes, NodeConfig{ID: 7, Label: "seven", X: 3, Y: 4})

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
