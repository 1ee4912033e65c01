package volume

import (
	"os"
	"path/filepath"
	"testing"

	"dcat-go/internal/catalog"
)

func TestDecodeUdevName(t *testing.T) {
	tests := map[string]string{
		"BACKUP":     "BACKUP",
		`My\x20Disk`: "My Disk",
		`a\x2fb`:     "a/b",
		`broken\x2`:  `broken\x2`,
		`not\xzzhex`: `not\xzzhex`,
	}
	for in, want := range tests {
		if got := decodeUdevName(in); got != want {
			t.Errorf("decodeUdevName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLinkNameFor(t *testing.T) {
	dir := t.TempDir()
	devDir := filepath.Join(dir, "dev")
	byUUID := filepath.Join(dir, "by-uuid")
	for _, d := range []string{devDir, byUUID} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	sdb1 := filepath.Join(devDir, "sdb1")
	sdc1 := filepath.Join(devDir, "sdc1")
	for _, p := range []string{sdb1, sdc1} {
		if err := os.WriteFile(p, nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Symlink("../dev/sdb1", filepath.Join(byUUID, "1234-ABCD")); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink("../dev/sdc1", filepath.Join(byUUID, "9f0e-77")); err != nil {
		t.Fatal(err)
	}

	id := NewIdentifier(catalog.NewNopLogger())

	if got := id.linkNameFor(byUUID, sdc1); got != "9f0e-77" {
		t.Errorf("linkNameFor(sdc1) = %q, want 9f0e-77", got)
	}
	if got := id.linkNameFor(byUUID, filepath.Join(devDir, "missing")); got != "" {
		t.Errorf("linkNameFor(missing device) = %q, want empty", got)
	}
	if got := id.linkNameFor(filepath.Join(dir, "nope"), sdb1); got != "" {
		t.Errorf("linkNameFor(missing dir) = %q, want empty", got)
	}
	if got := id.linkNameFor(byUUID, "tmpfs"); got != "" {
		t.Errorf("linkNameFor(non-path source) = %q, want empty", got)
	}
}
