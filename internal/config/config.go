// Package config loads dashboard settings from JSON, YAML or TOML files.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/SmitUplenchwar2687/Vantage/internal/storage"
)

// File formats understood by LoadFile and WriteExample.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Config is the top-level configuration for a Vantage dashboard.
type Config struct {
	Server    ServerConfig
	API       APIConfig
	Locale    string
	Map       MapConfig
	Storage   StorageConfig
	Log       LogConfig
	Dashboard DashboardConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string
}

// APIConfig points at the analytics backend. A zero Timeout means requests
// only end with their context.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// MapConfig is the initial map view and tile source.
type MapConfig struct {
	CenterLat   float64
	CenterLng   float64
	Zoom        int
	TileURL     string
	Attribution string
	Subdomains  string
	MaxZoom     int
}

// StorageConfig selects where load tokens and chart bodies live.
type StorageConfig struct {
	Backend string
	Redis   storage.RedisConfig
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig holds session settings.
type DashboardConfig struct {
	SessionID    string
	HistoryLimit int
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
		},
		Locale: "en-US",
		Map: MapConfig{
			CenterLat:   6.5,
			CenterLng:   3.35,
			Zoom:        11,
			TileURL:     "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
			Subdomains:  "abcd",
			MaxZoom:     19,
		},
		Storage: StorageConfig{
			Backend: storage.BackendMemory,
			Redis: storage.RedisConfig{
				Host:        "localhost",
				Port:        6379,
				PoolSize:    20,
				MaxRetries:  3,
				DialTimeout: 5 * time.Second,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Dashboard: DashboardConfig{
			HistoryLimit: 1000,
		},
	}
}

// Validate checks that the config is valid.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", c.API.Timeout)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > c.Map.MaxZoom {
		return fmt.Errorf("map.zoom must be between 0 and %d, got %d", c.Map.MaxZoom, c.Map.Zoom)
	}
	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 || c.Map.CenterLng < -180 || c.Map.CenterLng > 180 {
		return fmt.Errorf("map.center %v,%v is not a valid coordinate", c.Map.CenterLat, c.Map.CenterLng)
	}
	switch c.Storage.Backend {
	case storage.BackendMemory, storage.BackendRedis:
	default:
		return fmt.Errorf("unknown storage backend %q, must be one of: memory, redis", c.Storage.Backend)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q, must be one of: json, console", c.Log.Format)
	}
	if c.Dashboard.HistoryLimit < 0 {
		return fmt.Errorf("dashboard.history_limit must not be negative, got %d", c.Dashboard.HistoryLimit)
	}
	return nil
}

// FormatOf picks the file format from a path's extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config extension %q, use .json, .yaml or .toml", filepath.Ext(path))
	}
}

// LoadFile reads a config file and merges it with defaults.
// Fields not specified in the file retain their default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	format, err := FormatOf(path)
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var raw rawConfig
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &raw)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raw)
	case FormatTOML:
		err = toml.Unmarshal(data, &raw)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}

	if err := raw.merge(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// rawConfig is the file representation with string durations.
type rawConfig struct {
	Server struct {
		Addr string `json:"addr" yaml:"addr" toml:"addr"`
	} `json:"server" yaml:"server" toml:"server"`
	API struct {
		BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url"`
		Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty" toml:"timeout,omitempty"`
	} `json:"api" yaml:"api" toml:"api"`
	Locale string `json:"locale" yaml:"locale" toml:"locale"`
	Map    struct {
		Center      []float64 `json:"center,omitempty" yaml:"center,omitempty" toml:"center,omitempty"`
		Zoom        int       `json:"zoom,omitempty" yaml:"zoom,omitempty" toml:"zoom,omitempty"`
		TileURL     string    `json:"tile_url,omitempty" yaml:"tile_url,omitempty" toml:"tile_url,omitempty"`
		Attribution string    `json:"attribution,omitempty" yaml:"attribution,omitempty" toml:"attribution,omitempty"`
		Subdomains  string    `json:"subdomains,omitempty" yaml:"subdomains,omitempty" toml:"subdomains,omitempty"`
		MaxZoom     int       `json:"max_zoom,omitempty" yaml:"max_zoom,omitempty" toml:"max_zoom,omitempty"`
	} `json:"map" yaml:"map" toml:"map"`
	Storage struct {
		Backend string `json:"backend" yaml:"backend" toml:"backend"`
		Redis   struct {
			storage.RedisConfig `yaml:",inline"`
			DialTimeout         string `json:"dial_timeout,omitempty" yaml:"dial_timeout,omitempty" toml:"dial_timeout,omitempty"`
		} `json:"redis" yaml:"redis" toml:"redis"`
	} `json:"storage" yaml:"storage" toml:"storage"`
	Log struct {
		Level  string `json:"level" yaml:"level" toml:"level"`
		Format string `json:"format" yaml:"format" toml:"format"`
	} `json:"log" yaml:"log" toml:"log"`
	Dashboard struct {
		SessionID    string `json:"session_id,omitempty" yaml:"session_id,omitempty" toml:"session_id,omitempty"`
		HistoryLimit int    `json:"history_limit,omitempty" yaml:"history_limit,omitempty" toml:"history_limit,omitempty"`
	} `json:"dashboard" yaml:"dashboard" toml:"dashboard"`
}

func (raw rawConfig) merge(cfg *Config) error {
	if raw.Server.Addr != "" {
		cfg.Server.Addr = raw.Server.Addr
	}
	if raw.API.BaseURL != "" {
		cfg.API.BaseURL = raw.API.BaseURL
	}
	if raw.API.Timeout != "" {
		d, err := time.ParseDuration(raw.API.Timeout)
		if err != nil {
			return fmt.Errorf("parsing api.timeout: %w", err)
		}
		cfg.API.Timeout = d
	}
	if raw.Locale != "" {
		cfg.Locale = raw.Locale
	}

	switch len(raw.Map.Center) {
	case 0:
	case 2:
		cfg.Map.CenterLat, cfg.Map.CenterLng = raw.Map.Center[0], raw.Map.Center[1]
	default:
		return fmt.Errorf("map.center must be [lat, lng], got %d values", len(raw.Map.Center))
	}
	if raw.Map.Zoom > 0 {
		cfg.Map.Zoom = raw.Map.Zoom
	}
	if raw.Map.TileURL != "" {
		cfg.Map.TileURL = raw.Map.TileURL
	}
	if raw.Map.Attribution != "" {
		cfg.Map.Attribution = raw.Map.Attribution
	}
	if raw.Map.Subdomains != "" {
		cfg.Map.Subdomains = raw.Map.Subdomains
	}
	if raw.Map.MaxZoom > 0 {
		cfg.Map.MaxZoom = raw.Map.MaxZoom
	}

	if raw.Storage.Backend != "" {
		cfg.Storage.Backend = raw.Storage.Backend
	}
	r := raw.Storage.Redis
	if r.Host != "" {
		cfg.Storage.Redis.Host = r.Host
	}
	if r.Port > 0 {
		cfg.Storage.Redis.Port = r.Port
	}
	if r.Password != "" {
		cfg.Storage.Redis.Password = r.Password
	}
	if r.DB > 0 {
		cfg.Storage.Redis.DB = r.DB
	}
	if r.Cluster {
		cfg.Storage.Redis.Cluster = true
	}
	if len(r.ClusterNodes) > 0 {
		cfg.Storage.Redis.ClusterNodes = append([]string(nil), r.ClusterNodes...)
	}
	if r.PoolSize > 0 {
		cfg.Storage.Redis.PoolSize = r.PoolSize
	}
	if r.MaxRetries > 0 {
		cfg.Storage.Redis.MaxRetries = r.MaxRetries
	}
	if r.DialTimeout != "" {
		d, err := time.ParseDuration(r.DialTimeout)
		if err != nil {
			return fmt.Errorf("parsing storage.redis.dial_timeout: %w", err)
		}
		cfg.Storage.Redis.DialTimeout = d
	}

	if raw.Log.Level != "" {
		cfg.Log.Level = raw.Log.Level
	}
	if raw.Log.Format != "" {
		cfg.Log.Format = raw.Log.Format
	}
	if raw.Dashboard.SessionID != "" {
		cfg.Dashboard.SessionID = raw.Dashboard.SessionID
	}
	if raw.Dashboard.HistoryLimit > 0 {
		cfg.Dashboard.HistoryLimit = raw.Dashboard.HistoryLimit
	}
	return nil
}

// toRaw converts cfg back to its file representation.
func toRaw(cfg Config) rawConfig {
	var raw rawConfig
	raw.Server.Addr = cfg.Server.Addr
	raw.API.BaseURL = cfg.API.BaseURL
	if cfg.API.Timeout > 0 {
		raw.API.Timeout = cfg.API.Timeout.String()
	}
	raw.Locale = cfg.Locale
	raw.Map.Center = []float64{cfg.Map.CenterLat, cfg.Map.CenterLng}
	raw.Map.Zoom = cfg.Map.Zoom
	raw.Map.TileURL = cfg.Map.TileURL
	raw.Map.Attribution = cfg.Map.Attribution
	raw.Map.Subdomains = cfg.Map.Subdomains
	raw.Map.MaxZoom = cfg.Map.MaxZoom
	raw.Storage.Backend = cfg.Storage.Backend
	raw.Storage.Redis.RedisConfig = cfg.Storage.Redis
	raw.Storage.Redis.DialTimeout = cfg.Storage.Redis.DialTimeout.String()
	raw.Log.Level = cfg.Log.Level
	raw.Log.Format = cfg.Log.Format
	raw.Dashboard.SessionID = cfg.Dashboard.SessionID
	raw.Dashboard.HistoryLimit = cfg.Dashboard.HistoryLimit
	return raw
}

// Encode writes cfg in the given format.
func Encode(cfg Config, format string) ([]byte, error) {
	raw := toRaw(cfg)
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(raw, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(raw); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		return toml.Marshal(raw)
	default:
		return nil, fmt.Errorf("unknown config format %q", format)
	}
}

// WriteExample writes the default config to path, in the format its
// extension names.
func WriteExample(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := Encode(Default(), format)
	if err != nil {
		return fmt.Errorf("encoding example config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
