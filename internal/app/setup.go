package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dcat-go/internal/catalog"
	"dcat-go/internal/config"
	"dcat-go/internal/database"
	"dcat-go/internal/encryption"
)

// InitDatabase creates the catalog database and brings its schema to the
// latest version. It refuses to touch an existing file.
func InitDatabase(cfg *config.Config) error {
	if cfg.Database.Type != "sqlite" {
		return fmt.Errorf("database type %q needs no initialization", cfg.Database.Type)
	}
	path := cfg.Database.Path
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("database already exists at %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking database file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		os.Remove(path)
		return fmt.Errorf("migrating database: %w", err)
	}
	return store.Close()
}

// NeedsPassphrase reports whether the configured encryption uses a
// passphrase-protected key.
func NeedsPassphrase(cfg *config.Config) bool {
	return cfg.Encryption.Type == "age" || cfg.Encryption.Type == ""
}

// SetupEncryption generates the snapshot keys, protecting the private key
// with passphrase. Keys that already exist are left alone.
func SetupEncryption(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc.IsConfigured() {
		return nil
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption: %w", err)
	}
	return nil
}

// RestoreSnapshot downloads the newest snapshot from the vault into the
// configured database path, which must not exist. It returns the restored
// version.
func RestoreSnapshot(cfg *config.Config, passphrase string) (int64, error) {
	if cfg.Database.Type != "sqlite" {
		return 0, fmt.Errorf("cannot restore into a %q database", cfg.Database.Type)
	}
	snaps, err := newSnapshotService(cfg, catalog.NewNopLogger())
	if err != nil {
		return 0, err
	}
	if snaps == nil {
		return 0, ErrNoVault
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}
	dc, err := enc.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking key: %w", err)
	}

	version, err := snaps.Restore(dc, cfg.Database.Path)
	if err != nil {
		return 0, fmt.Errorf("restoring snapshot: %w", err)
	}
	return version, nil
}
