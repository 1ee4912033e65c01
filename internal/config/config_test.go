package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		HostID:  "test-host-abc",
		BaseDir: "/home/user/.local/share/dcat",
		LogDir:  "/home/user/.local/share/dcat/log",
		Vaults: []VaultConfig{
			{Type: "s3", Name: "offsite", S3Bucket: "catalogs", S3Prefix: "dcat/", S3Region: "eu-west-1", S3Endpoint: "http://localhost:9000"},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/dcat/keys/dcat.pub",
			PrivateKeyPath: "/home/user/.local/share/dcat/keys/dcat.key",
		},
		Database: DatabaseConfig{Type: "sqlite", Path: "/home/user/.local/share/dcat/catalog.db"},
		Scan:     ScanConfig{ProgressInterval: 250},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.HostID != original.HostID {
		t.Errorf("HostID = %q, want %q", got.HostID, original.HostID)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if len(got.Vaults) != 1 {
		t.Fatalf("len(Vaults) = %d, want 1", len(got.Vaults))
	}
	if got.Vaults[0] != original.Vaults[0] {
		t.Errorf("Vaults[0] = %+v, want %+v", got.Vaults[0], original.Vaults[0])
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if got.Scan.ProgressInterval != 250 {
		t.Errorf("Scan.ProgressInterval = %d, want 250", got.Scan.ProgressInterval)
	}
}

func TestManager_Read_TOML(t *testing.T) {
	in := `
host_id = "h"
base_dir = "/data"

[database]
type = "memory"

[[vaults]]
type = "filesystem"
name = "usb"
fs_vault_root = "/mnt/usb/vault"
`
	m := &Manager{}
	cfg, err := m.Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if cfg.Database.Type != "memory" || cfg.Database.Path != "" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if len(cfg.Vaults) != 1 || cfg.Vaults[0].FSVaultRoot != "/mnt/usb/vault" {
		t.Errorf("Vaults = %+v", cfg.Vaults)
	}
	if got := cfg.ProgressInterval(); got != DefaultProgressInterval {
		t.Errorf("ProgressInterval() = %d, want default %d", got, DefaultProgressInterval)
	}
}

func TestManager_Read_Invalid(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("host_id = ")); err == nil {
		t.Fatal("Read() expected error for malformed TOML")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("host-1", "/data/dcat")

	tests := []struct {
		field string
		got   string
		want  string
	}{
		{"HostID", cfg.HostID, "host-1"},
		{"BaseDir", cfg.BaseDir, "/data/dcat"},
		{"LogDir", cfg.LogDir, "/data/dcat/log"},
		{"Encryption.Type", cfg.Encryption.Type, "age"},
		{"Encryption.PublicKeyPath", cfg.Encryption.PublicKeyPath, "/data/dcat/keys/dcat.pub"},
		{"Encryption.PrivateKeyPath", cfg.Encryption.PrivateKeyPath, "/data/dcat/keys/dcat.key"},
		{"Database.Type", cfg.Database.Type, "sqlite"},
		{"Database.Path", cfg.Database.Path, "/data/dcat/catalog.db"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, tt.got, tt.want)
		}
	}
	if len(cfg.Vaults) != 0 {
		t.Errorf("Vaults = %+v, want none", cfg.Vaults)
	}
	if cfg.ProgressInterval() != DefaultProgressInterval {
		t.Errorf("ProgressInterval() = %d", cfg.ProgressInterval())
	}
}

func TestConfig_ProgressInterval(t *testing.T) {
	tests := []struct {
		name string
		set  int64
		want int64
	}{
		{"unset", 0, DefaultProgressInterval},
		{"negative", -5, DefaultProgressInterval},
		{"custom", 50, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Scan: ScanConfig{ProgressInterval: tt.set}}
			if got := cfg.ProgressInterval(); got != tt.want {
				t.Errorf("ProgressInterval() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "dcat.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "dcat.toml")
		cfg := NewConfig("h1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "dcat.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "read-test" {
			t.Errorf("HostID = %q, want %q", got.HostID, "read-test")
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want memory", got.Database.Type)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/dcat.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
