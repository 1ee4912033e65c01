package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"dcat-go/internal/catalog"
	"dcat-go/internal/config"
	"dcat-go/internal/database"
	"dcat-go/internal/database/sqlc"
	"dcat-go/internal/encryption"
	"dcat-go/internal/fs"
	"dcat-go/internal/snapshot"
	"dcat-go/internal/vault"
	"dcat-go/internal/volume"
)

var (
	// ErrNoDatabase is returned when the configured database file is missing.
	ErrNoDatabase = errors.New("no catalog database")
	// ErrNoVault is returned by snapshot commands when no vault is configured.
	ErrNoVault = errors.New("no vault configured")
)

// DCatApp is the application layer between the CLI and the catalog.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw paths and ids, and manages the DB lifecycle on Close.
type DCatApp struct {
	cfg        *config.Config
	store      *database.SQLiteStore
	service    *catalog.Service
	cataloguer *catalog.Cataloguer
	snapshots  *snapshot.Service // nil when no vault is configured
	logger     catalog.Logger
	op         *Operation
	logFile    *os.File

	mu  sync.Mutex
	job *catalog.Job // the running scan, if any
}

// NewDCatApp creates a fully wired DCatApp from the given config.
// operation identifies the CLI command being run (e.g. "AddDisk", "Search").
// The caller must call Close when done.
func NewDCatApp(cfg *config.Config, operation string) (*DCatApp, error) {
	if cfg.Database.Type == "sqlite" {
		if _, err := os.Stat(cfg.Database.Path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w at %s: run 'dcat db init' or 'dcat snapshot restore'", ErrNoDatabase, cfg.Database.Path)
			}
			return nil, fmt.Errorf("checking database file: %w", err)
		}
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	l, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &DCatApp{
		cfg:     cfg,
		store:   store,
		service: catalog.NewService(store, logger),
		logger:  logger,
		op:      NewOperation(operation, ""),
		logFile: logFile,
	}

	if err := a.init(); err != nil {
		store.Close()
		logFile.Close()
		return nil, err
	}
	return a, nil
}

func (a *DCatApp) init() error {
	if a.cfg.Database.Type == "memory" {
		if err := a.store.Migrate(); err != nil {
			return fmt.Errorf("migrating in-memory database: %w", err)
		}
	}
	if err := a.store.CheckMigrations(); err != nil {
		return fmt.Errorf("database schema out of date: %w", err)
	}

	snaps, err := newSnapshotService(a.cfg, a.logger)
	if err != nil {
		return err
	}
	if snaps != nil {
		// Check the local operation log against the newest snapshot.
		localMax, err := a.store.MaxOperationID()
		if err != nil {
			return fmt.Errorf("checking local catalog version: %w", err)
		}
		if err := snaps.CheckCurrent(localMax); err != nil {
			return err
		}
	}
	a.snapshots = snaps

	a.cataloguer = catalog.NewCataloguer(a.store, volume.NewIdentifier(a.logger), fs.NewOSFilesystem(), a.logger, catalog.RealClock{})
	a.cataloguer.SetProgressInterval(a.cfg.ProgressInterval())
	return nil
}

// newSnapshotService wires the first configured vault with the configured
// encryptor. It returns nil when no vault is configured.
func newSnapshotService(cfg *config.Config, logger catalog.Logger) (*snapshot.Service, error) {
	if len(cfg.Vaults) == 0 {
		return nil, nil
	}
	v, err := vault.NewVaultFromConfig(cfg.Vaults[0])
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if !enc.IsConfigured() {
		return nil, fmt.Errorf("encryption keys missing: run 'dcat config init' to create them")
	}
	return snapshot.NewService(v, enc, cfg.HostID, logger), nil
}

// persistOperation saves the operation to the database, giving it an
// auto-increment ID. Only catalog-mutating commands call it.
func (a *DCatApp) persistOperation(parameters string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = parameters
	dbOp, err := a.store.CreateOperation(a.op.Operation, parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// mutate persists the operation, runs fn and records its outcome.
func (a *DCatApp) mutate(parameters string, fn func() error) error {
	if err := a.persistOperation(parameters); err != nil {
		return err
	}
	err := fn()
	switch {
	case err == nil:
	case catalog.Cancelled(err):
		a.op.Status = StatusCancelled
	default:
		a.op.Status = StatusError
	}
	return err
}

// Operation returns the operation this app instance is running.
func (a *DCatApp) Operation() *Operation {
	return a.op
}

// Catalogues

func (a *DCatApp) CreateCatalogue(name string) (*sqlc.Catalogue, error) {
	var c *sqlc.Catalogue
	err := a.mutate(name, func() error {
		var err error
		c, err = a.service.CreateCatalogue(name)
		return err
	})
	return c, err
}

func (a *DCatApp) ListCatalogues() ([]*sqlc.Catalogue, error) {
	return a.service.ListCatalogues()
}

func (a *DCatApp) RenameCatalogue(id int64, name string) error {
	return a.mutate(idParams(id, name), func() error {
		return a.service.RenameCatalogue(id, name)
	})
}

// DeleteCatalogue deletes the catalogue together with its disks.
func (a *DCatApp) DeleteCatalogue(id int64) error {
	return a.mutate(idParams(id), func() error {
		return a.service.DeleteCatalogue(id)
	})
}

// Disks

// AddDisk catalogues the tree at rawPath as a new disk. An empty name
// defaults to the last element of the path.
func (a *DCatApp) AddDisk(ctx context.Context, rawPath, name string, catalogueID sql.NullInt64, obs catalog.Observer) (*catalog.Result, error) {
	p, err := resolvePath(rawPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = filepath.Base(p)
	}
	if err := a.service.CheckCatalogue(catalogueID); err != nil {
		return nil, err
	}

	var res *catalog.Result
	err = a.mutate(p, func() error {
		var err error
		res, err = a.scan(ctx, catalog.Request{
			Path:        p,
			DiskName:    strings.TrimSpace(name),
			CatalogueID: catalogueID,
		}, obs)
		return err
	})
	return res, err
}

// UpdateDisk replaces the contents of an existing disk with a fresh scan.
// An empty rawPath rescans the path the disk was last catalogued from. The
// disk keeps its id, name, catalogue and commands.
func (a *DCatApp) UpdateDisk(ctx context.Context, diskID int64, rawPath string, obs catalog.Observer) (*catalog.Result, error) {
	disk, err := a.service.GetDisk(diskID)
	if err != nil {
		return nil, err
	}
	p := disk.ScanPath
	if rawPath != "" {
		if p, err = resolvePath(rawPath); err != nil {
			return nil, err
		}
	}

	var res *catalog.Result
	err = a.mutate(idParams(diskID, p), func() error {
		var err error
		res, err = a.scan(ctx, catalog.Request{
			Path:          p,
			DiskName:      disk.Name,
			CatalogueID:   disk.CatalogueID,
			ReplaceDiskID: sql.NullInt64{Int64: diskID, Valid: true},
		}, obs)
		return err
	})
	return res, err
}

// scan runs req as a background job and waits for it. The lock is held
// while the job is registered so that a CancelScan issued from the first
// progress report already finds it.
func (a *DCatApp) scan(ctx context.Context, req catalog.Request, obs catalog.Observer) (*catalog.Result, error) {
	a.mu.Lock()
	job := a.cataloguer.Start(ctx, req, obs)
	a.job = job
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.job = nil
		a.mu.Unlock()
	}()
	return job.Wait()
}

// CancelScan stops the running AddDisk or UpdateDisk, which then rolls back
// and returns a cancellation error. It reports whether a scan was running.
func (a *DCatApp) CancelScan() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.job == nil {
		return false
	}
	a.job.Cancel()
	return true
}

func (a *DCatApp) GetDisk(id int64) (*sqlc.Disk, error) {
	return a.service.GetDisk(id)
}

// ListDisks returns the disks of one catalogue, or the root-level disks.
func (a *DCatApp) ListDisks(catalogueID sql.NullInt64) ([]*sqlc.Disk, error) {
	if err := a.service.CheckCatalogue(catalogueID); err != nil {
		return nil, err
	}
	return a.service.ListDisks(catalogueID)
}

func (a *DCatApp) ListAllDisks() ([]*sqlc.Disk, error) {
	return a.service.ListAllDisks()
}

func (a *DCatApp) RenameDisk(id int64, name string) error {
	return a.mutate(idParams(id, name), func() error {
		return a.service.RenameDisk(id, name)
	})
}

func (a *DCatApp) MoveDisk(id int64, catalogueID sql.NullInt64) error {
	params := idParams(id)
	if catalogueID.Valid {
		params = idParams(id, catalogueID.Int64)
	}
	return a.mutate(params, func() error {
		return a.service.MoveDisk(id, catalogueID)
	})
}

func (a *DCatApp) SetDiskCommands(id int64, mount, unmount string) error {
	return a.mutate(idParams(id), func() error {
		return a.service.SetDiskCommands(id, mount, unmount)
	})
}

func (a *DCatApp) DeleteDisk(id int64) error {
	return a.mutate(idParams(id), func() error {
		return a.service.DeleteDisk(id)
	})
}

// Browsing

// Browse is a directory listing with its location and summary.
type Browse struct {
	Disk    *sqlc.Disk
	Path    string
	Listing *catalog.Listing
	Summary *catalog.DirectorySummary
}

// ListDirectory lists a directory of a disk; an invalid dirID lists the
// disk's root directory.
func (a *DCatApp) ListDirectory(diskID int64, dirID sql.NullInt64) (*Browse, error) {
	disk, err := a.service.GetDisk(diskID)
	if err != nil {
		return nil, err
	}

	id := dirID.Int64
	if !dirID.Valid {
		root, err := a.service.RootDirectory(diskID)
		if err != nil {
			return nil, err
		}
		id = root.ID
	}

	l, err := a.service.ListDirectory(id)
	if err != nil {
		return nil, err
	}
	if l.Directory.DiskID != diskID {
		return nil, fmt.Errorf("directory %d on disk %d: %w", id, diskID, catalog.ErrNotFound)
	}

	p, err := a.service.DirectoryPath(id)
	if err != nil {
		return nil, err
	}
	sum, err := a.service.DirectorySummary(id)
	if err != nil {
		return nil, err
	}
	return &Browse{Disk: disk, Path: p, Listing: l, Summary: sum}, nil
}

func (a *DCatApp) Search(text string, limit int) ([]*catalog.SearchHit, error) {
	return a.service.Search(text, limit)
}

// Maintenance

// DatabaseInfo describes the catalog database.
type DatabaseInfo struct {
	Path  string
	Stats *catalog.Stats
	// Version is the id of the newest operation in the local history.
	Version int64
	// RemoteVersion is the version of the newest snapshot, or -1 when no
	// vault is configured.
	RemoteVersion int64
}

func (a *DCatApp) Info() (*DatabaseInfo, error) {
	st, err := a.service.Stats()
	if err != nil {
		return nil, err
	}
	version, err := a.store.MaxOperationID()
	if err != nil {
		return nil, err
	}
	info := &DatabaseInfo{Path: a.store.Path(), Stats: st, Version: version, RemoteVersion: -1}
	if a.snapshots != nil {
		if info.RemoteVersion, err = a.snapshots.RemoteVersion(); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func (a *DCatApp) Compact() error {
	return a.service.Compact()
}

// GetHistory returns the most recent catalog-mutating operations.
func (a *DCatApp) GetHistory(limit int) ([]*sqlc.Operation, error) {
	return a.store.ListOperations(limit)
}

// PushSnapshot records a snapshot operation; the snapshot itself is taken
// and uploaded by Close, like after any other mutating command.
func (a *DCatApp) PushSnapshot() error {
	if a.snapshots == nil {
		return ErrNoVault
	}
	return a.persistOperation("")
}

// Close finalizes the operation and closes all resources.
// For persisted operations it finishes the operation record and, when a
// vault is configured and the operation succeeded, pushes a snapshot whose
// version is the operation ID.
func (a *DCatApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.store.FinishOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
		if a.snapshots != nil && a.op.Status == StatusSuccess && firstErr == nil {
			if err := a.snapshots.Push(a.store, a.op.ID); err != nil {
				firstErr = fmt.Errorf("pushing snapshot: %w", err)
			}
		}
	}

	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing database: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

func resolvePath(rawPath string) (string, error) {
	if strings.TrimSpace(rawPath) == "" {
		return "", fmt.Errorf("path must not be empty")
	}
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return p, nil
}

func idParams(id int64, rest ...any) string {
	parts := []string{strconv.FormatInt(id, 10)}
	for _, r := range rest {
		parts = append(parts, fmt.Sprint(r))
	}
	return strings.Join(parts, " ")
}
