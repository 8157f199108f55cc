package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultDeviceMatch     = "MPD26"
	DefaultMappingName     = "Baustella"
	DefaultVirtualPortName = "Baustella Light Control"
	DefaultQlcPlusPath     = `C:\QLC+5\qlcplus.exe`
)

// OSCConfig addresses the OSC receiver of the lighting software.
type OSCConfig struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Prefix string `json:"prefix"`
}

// SerialConfig selects the serial button box. An empty port disables it.
type SerialConfig struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
}

// Rtl433Config locates the RF decoder. An empty path disables it.
type Rtl433Config struct {
	Path string   `json:"path"`
	Args []string `json:"args,omitempty"`
}

type QlcPlusConfig struct {
	Executable string `json:"executable"`
	AutoStart  bool   `json:"auto_start"`
}

// Duration is a time.Duration stored as a string like "30s".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config holds application configuration
type Config struct {
	Bindings          *Bindings     `json:"bindings"`
	DeviceMatch       string        `json:"device_match"`
	MappingName       string        `json:"mapping_name"`
	VirtualPortName   string        `json:"virtual_port_name"`
	OSC               OSCConfig     `json:"osc"`
	Serial            SerialConfig  `json:"serial"`
	Rtl433            Rtl433Config  `json:"rtl433"`
	LearnTimeout      Duration      `json:"learn_timeout"`
	LogLevel          string        `json:"log_level"`
	QlcPlus           QlcPlusConfig `json:"qlcplus"`
	OpenWindowOnStart bool          `json:"open_window_on_start"`
	OpenAtStartup     bool          `json:"open_at_startup"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		Bindings:        NewBindings(),
		DeviceMatch:     DefaultDeviceMatch,
		MappingName:     DefaultMappingName,
		VirtualPortName: DefaultVirtualPortName,
		OSC: OSCConfig{
			Host:   "127.0.0.1",
			Port:   7700,
			Prefix: "/QlcPlus",
		},
		Serial:   SerialConfig{BaudRate: 9600},
		Rtl433:   Rtl433Config{Path: "rtl_433"},
		LogLevel: "info",
		QlcPlus: QlcPlusConfig{
			Executable: DefaultQlcPlusPath,
		},
		OpenWindowOnStart: true,
	}
}

// configDir returns the platform-appropriate config directory
func configDir() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, "baustella-light-control"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, returning defaults if not found
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads the config at path. Missing keys keep their defaults.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Ensure bindings are not nil
	if cfg.Bindings == nil {
		cfg.Bindings = NewBindings()
	}
	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
