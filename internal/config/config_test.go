package config

import (
	"os"
	"path/filepath"
	"testing"
)

var validateTests = map[string]struct {
	cfg     Config
	wantErr bool
}{
	"serial ok": {
		cfg: Config{
			Serial:        SerialConfig{Device: "/dev/ttyUSB0", Baud: 19200},
			CommandServer: CommandServerConfig{ListenAddr: ":4532"},
		},
		wantErr: false,
	},
	"lan ok": {
		cfg: Config{
			LAN: LANConfig{
				Host: "192.168.1.50", ControlPort: 50001, CIVPort: 50002,
				AudioPort: 50003, Username: "op",
			},
			CommandServer: CommandServerConfig{ListenAddr: ":4532"},
		},
		wantErr: false,
	},
	"no transport configured": {
		cfg: Config{
			CommandServer: CommandServerConfig{ListenAddr: ":4532"},
		},
		wantErr: true,
	},
	"serial without baud": {
		cfg: Config{
			Serial:        SerialConfig{Device: "/dev/ttyUSB0", Baud: 0},
			CommandServer: CommandServerConfig{ListenAddr: ":4532"},
		},
		wantErr: true,
	},
	"lan port out of range": {
		cfg: Config{
			LAN: LANConfig{
				Host: "192.168.1.50", ControlPort: 70000, CIVPort: 50002,
				AudioPort: 50003, Username: "op",
			},
			CommandServer: CommandServerConfig{ListenAddr: ":4532"},
		},
		wantErr: true,
	},
	"lan without username": {
		cfg: Config{
			LAN: LANConfig{
				Host: "192.168.1.50", ControlPort: 50001, CIVPort: 50002,
				AudioPort: 50003,
			},
			CommandServer: CommandServerConfig{ListenAddr: ":4532"},
		},
		wantErr: true,
	},
	"missing command server listen addr": {
		cfg: Config{
			Serial: SerialConfig{Device: "/dev/ttyUSB0", Baud: 19200},
		},
		wantErr: true,
	},
}

func TestValidate(t *testing.T) {
	for name, tc := range validateTests {
		err := tc.cfg.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected an error, got nil", name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
	}
}

func TestLoadAppliesDefaultsAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "civd.yaml")
	yamlContent := `
serial:
  device: /dev/ttyUSB0
command_server:
  listen_addr: ":4532"
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Serial.Baud != 19200 {
		t.Fatalf("Serial.Baud = %d, want default 19200", cfg.Serial.Baud)
	}
	if cfg.LAN.ReauthIntervalS != 60 {
		t.Fatalf("LAN.ReauthIntervalS = %d, want default 60", cfg.LAN.ReauthIntervalS)
	}
}

func TestLoadRejectsUnusableConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "civd.yaml")
	if err := os.WriteFile(path, []byte("command_server:\n  listen_addr: \":4532\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected Load to reject a config with no transport configured")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/civd.yaml"); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
