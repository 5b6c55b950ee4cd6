package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/recera/flowcanvas/pkg/flow"
	"github.com/recera/flowcanvas/pkg/view"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the project directory
const FileName = "flowcanvas.yaml"

// Config represents the flowcanvas.yaml configuration
type Config struct {
	// Server configuration for the browser host
	Server *ServerConfig `yaml:"server,omitempty"`

	// Canvas appearance
	Canvas *CanvasConfig `yaml:"canvas,omitempty"`

	// Nodes seeded into every new canvas
	Nodes []NodeConfig `yaml:"nodes,omitempty"`

	// Debug logs pointer traffic
	Debug bool `yaml:"debug,omitempty"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`
}

// CanvasConfig contains page title and theme colors
type CanvasConfig struct {
	Title      string `yaml:"title,omitempty"`
	Background string `yaml:"background,omitempty"`
	Accent     string `yaml:"accent,omitempty"`
	Text       string `yaml:"text,omitempty"`
}

// NodeConfig is one seed node
type NodeConfig struct {
	ID    int    `yaml:"id"`
	Label string `yaml:"label,omitempty"`
	X     int    `yaml:"x"`
	Y     int    `yaml:"y"`
}

// Path returns the config path inside a project directory
func Path(projectPath string) string {
	return filepath.Join(projectPath, FileName)
}

// Load loads configuration from a YAML file. A missing file yields the
// default configuration.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", configPath, err)
	}
	return &config, nil
}

// Save saves configuration as YAML
func Save(config *Config, configPath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerConfig{
			Host: "localhost",
			Port: 5173,
		},
		Canvas: &CanvasConfig{
			Title:      "Flow Canvas",
			Background: view.DefaultTheme().Background,
			Accent:     view.DefaultTheme().Accent,
			Text:       view.DefaultTheme().Text,
		},
		Nodes: []NodeConfig{
			{ID: 0, Label: flow.DefaultLabel},
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Server == nil {
		config.Server = defaults.Server
	} else {
		if config.Server.Host == "" {
			config.Server.Host = defaults.Server.Host
		}
		if config.Server.Port == 0 {
			config.Server.Port = defaults.Server.Port
		}
	}

	if config.Canvas == nil {
		config.Canvas = defaults.Canvas
	} else {
		if config.Canvas.Title == "" {
			config.Canvas.Title = defaults.Canvas.Title
		}
		if config.Canvas.Background == "" {
			config.Canvas.Background = defaults.Canvas.Background
		}
		if config.Canvas.Accent == "" {
			config.Canvas.Accent = defaults.Canvas.Accent
		}
		if config.Canvas.Text == "" {
			config.Canvas.Text = defaults.Canvas.Text
		}
	}

	if len(config.Nodes) == 0 {
		config.Nodes = defaults.Nodes
	}
}

// Validate checks values a canvas cannot start with
func (c *Config) Validate() error {
	if c.Server != nil && (c.Server.Port < 0 || c.Server.Port > 65535) {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}

	seen := make(map[int]bool, len(c.Nodes))
	for _, n := range c.Nodes {
		if !flow.ValidID(n.ID) {
			return fmt.Errorf("%w: %d", flow.ErrInvalidNodeID, n.ID)
		}
		if seen[n.ID] {
			return fmt.Errorf("%w: %d", flow.ErrDuplicateNode, n.ID)
		}
		seen[n.ID] = true
	}
	return nil
}

// Seed converts the configured nodes into registry seed nodes
func (c *Config) Seed() []flow.Node {
	nodes := make([]flow.Node, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		nodes = append(nodes, flow.NewNode(n.ID, n.Label, n.X, n.Y))
	}
	return nodes
}

// Theme returns the configured canvas colors
func (c *Config) Theme() view.Theme {
	if c.Canvas == nil {
		return view.DefaultTheme()
	}
	return view.Theme{
		Background: c.Canvas.Background,
		Accent:     c.Canvas.Accent,
		Text:       c.Canvas.Text,
	}
}

// Addr returns host:port for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
