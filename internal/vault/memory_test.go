package vault

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestMemoryVault_PutAndGetMetadata(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	tests := []struct {
		name    string
		host    string
		item    string
		content string
		version int64
	}{
		{"snapshot", "host-a", "db", "sqlite bytes", 3},
		{"empty item", "host-a", "empty", "", 1},
		{"large item", "host-b", "db", strings.Repeat("x", 10000), 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := vault.PutMetadata(tt.host, tt.item, strings.NewReader(tt.content), int64(len(tt.content)), tt.version); err != nil {
				t.Fatalf("PutMetadata() error = %v", err)
			}

			var buf bytes.Buffer
			if err := vault.GetMetadata(tt.host, tt.item, &buf); err != nil {
				t.Fatalf("GetMetadata() error = %v", err)
			}
			if got := buf.String(); got != tt.content {
				t.Errorf("GetMetadata() = %q, want %q", got, tt.content)
			}

			version, err := vault.GetMetadataVersion(tt.host, tt.item)
			if err != nil {
				t.Fatalf("GetMetadataVersion() error = %v", err)
			}
			if version != tt.version {
				t.Errorf("GetMetadataVersion() = %d, want %d", version, tt.version)
			}
		})
	}
}

func TestMemoryVault_PutMetadataOverwrites(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	for i, content := range []string{"first", "second"} {
		if err := vault.PutMetadata("h", "db", strings.NewReader(content), int64(len(content)), int64(i+1)); err != nil {
			t.Fatalf("PutMetadata() error = %v", err)
		}
	}

	var buf bytes.Buffer
	if err := vault.GetMetadata("h", "db", &buf); err != nil {
		t.Fatalf("GetMetadata() error = %v", err)
	}
	if buf.String() != "second" {
		t.Errorf("GetMetadata() = %q, want second", buf.String())
	}
	if v, _ := vault.GetMetadataVersion("h", "db"); v != 2 {
		t.Errorf("GetMetadataVersion() = %d, want 2", v)
	}
}

func TestMemoryVault_GetMetadataNotFound(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	var buf bytes.Buffer
	err := vault.GetMetadata("nobody", "db", &buf)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMetadata() error = %v, want ErrNotFound", err)
	}

	version, err := vault.GetMetadataVersion("nobody", "db")
	if err != nil || version != 0 {
		t.Errorf("GetMetadataVersion() = %d, %v; want 0, nil", version, err)
	}
}

func TestMemoryVault_PutMetadataSizeMismatch(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	if err := vault.PutMetadata("h", "db", strings.NewReader("abc"), 10, 1); err == nil {
		t.Fatal("PutMetadata() expected size mismatch error")
	}
	if v, _ := vault.GetMetadataVersion("h", "db"); v != 0 {
		t.Errorf("version recorded after failed put: %d", v)
	}
}

func TestMemoryVault_ValidateSetup(t *testing.T) {
	if err := NewMemoryVault("test-vault").ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}
}
