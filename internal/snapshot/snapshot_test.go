package snapshot_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dcat-go/internal/catalog"
	"dcat-go/internal/snapshot"
	"dcat-go/internal/testutil"
	"dcat-go/internal/vault"
)

// fileSource writes fixed bytes as its "backup".
type fileSource struct {
	data []byte
	err  error
}

func (s fileSource) BackupTo(dest string) error {
	if s.err != nil {
		return s.err
	}
	return os.WriteFile(dest, s.data, 0600)
}

func newService(t *testing.T) (*snapshot.Service, *vault.MemoryVault) {
	t.Helper()
	v := testutil.NewTestVault()
	return snapshot.NewService(v, testutil.NewTestEncryptor(), "host-1", catalog.NewNopLogger()), v
}

func TestService_PushAndRestore(t *testing.T) {
	svc, v := newService(t)
	data := []byte("SQLite format 3\x00 pretend catalog")

	if err := svc.Push(fileSource{data: data}, 5); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	var stored bytes.Buffer
	if err := v.GetMetadata("host-1", snapshot.DatabaseName, &stored); err != nil {
		t.Fatalf("GetMetadata() error = %v", err)
	}
	if bytes.Equal(stored.Bytes(), data) {
		t.Error("vault holds the plaintext snapshot")
	}

	version, err := svc.RemoteVersion()
	if err != nil {
		t.Fatalf("RemoteVersion() error = %v", err)
	}
	if version != 5 {
		t.Errorf("RemoteVersion() = %d, want 5", version)
	}

	dc, err := testutil.NewTestEncryptor().Unlock("")
	if err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(t.TempDir(), "restored", "catalog.db")
	restored, err := svc.Restore(dc, dest)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored != 5 {
		t.Errorf("Restore() version = %d, want 5", restored)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading restored database: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("restored data = %q, want %q", got, data)
	}
}

func TestService_PushSourceFailure(t *testing.T) {
	svc, _ := newService(t)

	if err := svc.Push(fileSource{err: errors.New("disk full")}, 1); err == nil {
		t.Fatal("Push() expected error")
	}
	if v, _ := svc.RemoteVersion(); v != 0 {
		t.Errorf("RemoteVersion() = %d after failed push, want 0", v)
	}
}

func TestService_CheckCurrent(t *testing.T) {
	svc, _ := newService(t)

	if err := svc.CheckCurrent(0); err != nil {
		t.Errorf("CheckCurrent(0) with empty vault error = %v", err)
	}

	if err := svc.Push(fileSource{data: []byte("x")}, 4); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	tests := []struct {
		local      int64
		wantBehind bool
	}{
		{3, true},
		{4, false},
		{9, false},
	}
	for _, tt := range tests {
		err := svc.CheckCurrent(tt.local)
		if got := errors.Is(err, snapshot.ErrBehind); got != tt.wantBehind {
			t.Errorf("CheckCurrent(%d) error = %v, want behind=%v", tt.local, err, tt.wantBehind)
		}
	}
}

func TestService_RestoreRefusals(t *testing.T) {
	dc, _ := testutil.NewTestEncryptor().Unlock("")

	t.Run("empty vault", func(t *testing.T) {
		svc, _ := newService(t)
		if _, err := svc.Restore(dc, filepath.Join(t.TempDir(), "c.db")); err == nil {
			t.Error("Restore() from empty vault expected error")
		}
	})

	t.Run("existing database", func(t *testing.T) {
		svc, _ := newService(t)
		if err := svc.Push(fileSource{data: []byte("snap")}, 1); err != nil {
			t.Fatal(err)
		}
		dest := filepath.Join(t.TempDir(), "c.db")
		if err := os.WriteFile(dest, []byte("local"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.Restore(dc, dest); err == nil {
			t.Fatal("Restore() over an existing database expected error")
		}
		got, _ := os.ReadFile(dest)
		if string(got) != "local" {
			t.Errorf("existing database modified: %q", got)
		}
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		svc, v := newService(t)
		junk := []byte("not encrypted")
		if err := v.PutMetadata("host-1", snapshot.DatabaseName, bytes.NewReader(junk), int64(len(junk)), 2); err != nil {
			t.Fatal(err)
		}
		dir := t.TempDir()
		dest := filepath.Join(dir, "c.db")
		if _, err := svc.Restore(dc, dest); err == nil {
			t.Fatal("Restore() of corrupt snapshot expected error")
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("files left after failed restore: %d", len(entries))
		}
	})
}

func TestService_PushRealDatabase(t *testing.T) {
	store := testutil.NewTestStore(t)
	if _, err := store.CreateCatalogue("Archive"); err != nil {
		t.Fatal(err)
	}

	svc, _ := newService(t)
	if err := svc.Push(store, 1); err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	dc, _ := testutil.NewTestEncryptor().Unlock("")
	dest := filepath.Join(t.TempDir(), "restored.db")
	if _, err := svc.Restore(dc, dest); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}

	header := make([]byte, 16)
	f, err := os.Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.Read(header); err != nil {
		t.Fatal(err)
	}
	if string(header) != "SQLite format 3\x00" {
		t.Errorf("restored file header = %q", header)
	}
}
