package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "mfulc.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFullConfigAndResolveKeyFile(t *testing.T) {
	tmp := t.TempDir()
	keyPath := filepath.Join(tmp, "ulc.hex")
	if err := os.WriteFile(keyPath, []byte("49454D4B41455242214E4143554F5946\n"), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	cfg, err := Load(writeConfig(t, tmp, `
driver: pcsc
device: 1
key_file: "ulc.hex"
pages: "4:15"
poll_seconds: 2
quiet: true
override: false
copy_uid: true
events:
  listen: ":18080"
  mdns: true
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.KeyFile != keyPath {
		t.Fatalf("expected resolved key path %q, got %q", keyPath, cfg.KeyFile)
	}
	if cfg.Driver != "pcsc" || cfg.Device == nil || *cfg.Device != 1 {
		t.Fatalf("unexpected driver/device: %q %v", cfg.Driver, cfg.Device)
	}
	if cfg.PollSeconds != 2 || !cfg.Quiet || !cfg.CopyUID || cfg.Pages != "4:15" {
		t.Fatalf("unexpected runtime values: %+v", cfg)
	}
	if cfg.Events.Listen != ":18080" || !cfg.Events.MDNS {
		t.Fatalf("unexpected events config: %+v", cfg.Events)
	}
}

func TestLoadEmptyConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, t.TempDir(), "quiet: false\n"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Device != nil {
		t.Fatalf("expected device to be unset, got %d", *cfg.Device)
	}
}

func TestLoadRejectsInvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"unknown field", "polling: 3\n", "field polling not found"},
		{"unknown driver", "driver: serial\n", "config.driver must be one of"},
		{"negative device", "device: -1\n", "config.device must be >= 0"},
		{"negative poll", "poll_seconds: -5\n", "config.poll_seconds must be >= 0"},
		{"missing key file", "key_file: nope.hex\n", "config.key_file"},
		{"mdns without listen", "events:\n  mdns: true\n", "requires config.events.listen"},
		{"bad yaml", "driver: [\n", "parse config yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.body))
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadKeyFileDirectory(t *testing.T) {
	tmp := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmp, "keys"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := Load(writeConfig(t, tmp, "key_file: keys\n"))
	if err == nil || !strings.Contains(err.Error(), "must point to a file") {
		t.Fatalf("expected directory error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read config") {
		t.Fatalf("expected read error, got %v", err)
	}
}
