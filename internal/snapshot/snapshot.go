// Package snapshot copies the catalog database to a vault and back.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dcat-go/internal/catalog"
)

// DatabaseName is the vault item a catalog snapshot is stored under.
const DatabaseName = "db"

// ErrBehind is returned when the vault holds a newer snapshot than the
// local operation log.
var ErrBehind = errors.New("local catalog is behind the vault")

// Vault provides an interface for snapshot storage backends.
// All operations use io.Reader/io.Writer for streaming.
type Vault interface {
	// PutMetadata stores a named item for a specific host.
	// size is the number of bytes that will be read from r.
	// version is stored alongside the item for consistency checks.
	PutMetadata(hostID string, name string, r io.Reader, size int64, version int64) error

	// GetMetadata retrieves a named item for a specific host and writes it to w.
	GetMetadata(hostID string, name string, w io.Writer) error

	// GetMetadataVersion returns the version for a named item on a host.
	// Returns 0 if nothing has been stored for this host/name.
	GetMetadataVersion(hostID string, name string) (int64, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}

// Encryptor protects snapshots at rest in the vault.
type Encryptor interface {
	// Setup performs one-time key generation. Called during `dcat config init`.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	// Uses the public key only; no passphrase required.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key using the passphrase and returns a
	// DecryptionContext for the rest of the session.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if the encryptor is ready to Encrypt.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory. It is never
// written to disk.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

// Source is a database that can write a consistent copy of itself.
type Source interface {
	BackupTo(destPath string) error
}

// Service pushes and restores catalog snapshots for one host.
type Service struct {
	vault     Vault
	encryptor Encryptor
	hostID    string
	logger    catalog.Logger
}

func NewService(v Vault, enc Encryptor, hostID string, logger catalog.Logger) *Service {
	return &Service{vault: v, encryptor: enc, hostID: hostID, logger: logger}
}

// RemoteVersion returns the version of the newest snapshot in the vault, or
// 0 if there is none.
func (s *Service) RemoteVersion() (int64, error) {
	v, err := s.vault.GetMetadataVersion(s.hostID, DatabaseName)
	if err != nil {
		return 0, fmt.Errorf("checking remote snapshot version: %w", err)
	}
	return v, nil
}

// CheckCurrent returns ErrBehind (wrapped) when the vault holds a snapshot
// newer than localVersion.
func (s *Service) CheckCurrent(localVersion int64) error {
	remote, err := s.RemoteVersion()
	if err != nil {
		return err
	}
	if remote > localVersion {
		return fmt.Errorf("%w (local=%d, remote=%d): restore from vault or re-initialize", ErrBehind, localVersion, remote)
	}
	return nil
}

// Push copies src, encrypts the copy and uploads it with the given version.
func (s *Service) Push(src Source, version int64) error {
	tmpDir, err := os.MkdirTemp("", "dcat-snapshot-*")
	if err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	plainPath := filepath.Join(tmpDir, "catalog.db")
	if err := src.BackupTo(plainPath); err != nil {
		return fmt.Errorf("copying database: %w", err)
	}

	encPath := filepath.Join(tmpDir, "catalog.db.enc")
	if err := s.encryptFile(plainPath, encPath); err != nil {
		return err
	}

	f, err := os.Open(encPath)
	if err != nil {
		return fmt.Errorf("opening snapshot for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	if err := s.vault.PutMetadata(s.hostID, DatabaseName, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot to vault: %w", err)
	}

	s.logger.Info("snapshot pushed", "version", version, "bytes", info.Size())
	return nil
}

func (s *Service) encryptFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening database copy: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	if err := s.encryptor.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing encrypted snapshot: %w", err)
	}
	return nil
}

// Restore downloads the newest snapshot, decrypts it with dc and writes it to
// destPath, which must not exist yet. It returns the restored version.
func (s *Service) Restore(dc DecryptionContext, destPath string) (int64, error) {
	if _, err := os.Stat(destPath); err == nil {
		return 0, fmt.Errorf("database already exists at %s", destPath)
	}

	version, err := s.RemoteVersion()
	if err != nil {
		return 0, err
	}
	if version == 0 {
		return 0, fmt.Errorf("no snapshot in vault for host %s", s.hostID)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return 0, fmt.Errorf("creating database directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".restore-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(s.vault.GetMetadata(s.hostID, DatabaseName, pw))
	}()

	if err := dc.Decrypt(pr, tmp); err != nil {
		pr.CloseWithError(err)
		tmp.Close()
		return 0, fmt.Errorf("decrypting snapshot: %w", err)
	}
	// Drain anything left so the download goroutine can finish.
	if _, err := io.Copy(io.Discard, pr); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("downloading snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("closing restored database: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return 0, fmt.Errorf("moving restored database into place: %w", err)
	}

	s.logger.Info("snapshot restored", "version", version, "path", destPath)
	return version, nil
}
