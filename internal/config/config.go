// Package config loads and validates the immutable configuration
// record for a civd process: serial/LAN transport endpoints, CI-V
// addressing, the command-server listen address, and the ambient
// subsystems (metrics, GeoIP, MCP). Structure and the load/validate
// split follow the teacher's own config.go.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration record, loaded once at startup and
// handed down read-only to every component.
type Config struct {
	Serial        SerialConfig        `yaml:"serial"`
	LAN           LANConfig           `yaml:"lan"`
	CIV           CIVConfig           `yaml:"civ"`
	CommandServer CommandServerConfig `yaml:"command_server"`
	Metrics       MetricsConfig       `yaml:"metrics"`
	GeoIP         GeoIPConfig         `yaml:"geoip"`
	MCP           MCPConfig           `yaml:"mcp"`
	StateEvents   StateEventsConfig   `yaml:"state_events"`
	Calibration   CalibrationConfig  `yaml:"calibration"`
}

// SerialConfig configures the CI-V serial transport (C5). Used only
// when LAN.Host is empty.
type SerialConfig struct {
	Device       string `yaml:"device"`
	Baud         int    `yaml:"baud"`
	UseRTSForPTT bool   `yaml:"use_rts_for_ptt"`
}

// LANConfig configures the Icom LAN triple-stream transport (C6).
type LANConfig struct {
	Host             string `yaml:"host"`
	ControlPort      int    `yaml:"control_port"`
	CIVPort          int    `yaml:"civ_port"`
	AudioPort        int    `yaml:"audio_port"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	ReauthIntervalS   int `yaml:"reauth_interval_seconds"`
	IdlePingIntervalMS int `yaml:"idle_ping_interval_ms"`
}

// CIVConfig carries CI-V bus addressing. RigAddress defaults to the
// broadcast address 0x00; the rig-identification handshake (C3) binds
// the session to the responding rig's address and does not write it
// back here.
type CIVConfig struct {
	ControllerAddress byte `yaml:"controller_address"`
	RigAddress        byte `yaml:"rig_address"`
}

// CommandServerConfig configures the Hamlib-compatible TCP server (C7).
type CommandServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// MetricsConfig configures the Prometheus exporter (C10).
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// GeoIPConfig configures the optional GeoIP2 database used by the
// session audit log (C12). DatabasePath empty disables lookups; GeoIP
// is best-effort and never blocks authentication.
type GeoIPConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// MCPConfig configures the MCP tool server (C13).
type MCPConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// StateEventsConfig configures the WebSocket state-push endpoint (C11).
type StateEventsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// CalPoint is one (raw, dB) plot point of an S-meter calibration curve.
type CalPoint struct {
	Raw int `yaml:"raw"`
	DB  int `yaml:"db"`
}

// CalibrationConfig is parsed from the config file, but nothing reads it:
// S-meter calibration always uses internal/cmdserver's compiled-in
// IC-7300/7610/7850 tables, whatever Table holds.
type CalibrationConfig struct {
	Model string     `yaml:"model"`
	Table []CalPoint `yaml:"table"`
}

// Load reads and parses a YAML config file, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Serial.Baud == 0 {
		c.Serial.Baud = 19200
	}
	if c.LAN.ReauthIntervalS == 0 {
		c.LAN.ReauthIntervalS = 60
	}
	if c.LAN.IdlePingIntervalMS == 0 {
		c.LAN.IdlePingIntervalMS = 100
	}
	if c.CIV.ControllerAddress == 0 {
		c.CIV.ControllerAddress = 0xE1
	}
	if c.CommandServer.ListenAddr == "" {
		c.CommandServer.ListenAddr = ":4532"
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		c.Metrics.ListenAddr = ":9090"
	}
	if c.MCP.Enabled && c.MCP.ListenAddr == "" {
		c.MCP.ListenAddr = ":8765"
	}
	if c.StateEvents.Enabled && c.StateEvents.ListenAddr == "" {
		c.StateEvents.ListenAddr = ":8766"
	}
}

// Validate rejects an unusable config: a transport that is neither
// serial nor LAN, an out-of-range port, or a serial device missing
// when serial transport is selected (spec.md §8 testable property 7).
func (c *Config) Validate() error {
	usingLAN := c.LAN.Host != ""
	if !usingLAN && c.Serial.Device == "" {
		return fmt.Errorf("either serial.device or lan.host must be set")
	}
	if !usingLAN {
		if c.Serial.Baud <= 0 {
			return fmt.Errorf("serial.baud must be positive")
		}
	} else {
		for name, port := range map[string]int{
			"lan.control_port": c.LAN.ControlPort,
			"lan.civ_port":     c.LAN.CIVPort,
			"lan.audio_port":   c.LAN.AudioPort,
		} {
			if port <= 0 || port > 65535 {
				return fmt.Errorf("%s must be between 1 and 65535, got %d", name, port)
			}
		}
		if c.LAN.Username == "" {
			return fmt.Errorf("lan.username is required when lan.host is set")
		}
	}
	if c.CommandServer.ListenAddr == "" {
		return fmt.Errorf("command_server.listen_addr is required")
	}
	return nil
}
