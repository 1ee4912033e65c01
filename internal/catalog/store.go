package catalog

import (
	"context"
	"database/sql"
	"errors"

	"dcat-go/internal/database/sqlc"
)

// ErrNotFound is returned (wrapped) by Store mutations that match no row.
// Lookups signal absence with a nil result instead.
var ErrNotFound = errors.New("not found")

// Stats summarizes the contents of a catalog database.
type Stats struct {
	Catalogues    int64
	Disks         int64
	Directories   int64
	Files         int64
	TotalBytes    int64
	DatabaseBytes int64
}

// Store is the catalog database as seen by the service layer.
type Store interface {
	// Catalogue operations

	CreateCatalogue(name string) (*sqlc.Catalogue, error)
	FindCatalogue(id int64) (*sqlc.Catalogue, error)
	ListCatalogues() ([]*sqlc.Catalogue, error)
	RenameCatalogue(id int64, name string) error

	// DeleteCatalogue removes the catalogue together with its disks,
	// directories and files in one transaction.
	DeleteCatalogue(id int64) error

	// Disk operations

	FindDisk(id int64) (*sqlc.Disk, error)

	// ListDisks returns the disks of one catalogue, or the root-level disks
	// when catalogueID is not valid.
	ListDisks(catalogueID sql.NullInt64) ([]*sqlc.Disk, error)
	ListAllDisks() ([]*sqlc.Disk, error)
	RenameDisk(id int64, name string) error
	MoveDisk(id int64, catalogueID sql.NullInt64) error
	SetDiskCommands(id int64, mount, unmount string) error

	// DeleteDisk removes the disk and its contents in one transaction.
	DeleteDisk(id int64) error

	// Directory and file operations

	FindDirectory(id int64) (*sqlc.Directory, error)
	FindRootDirectory(diskID int64) (*sqlc.Directory, error)
	ListChildDirectories(dirID int64) ([]*sqlc.Directory, error)
	ListFiles(dirID int64) ([]*sqlc.File, error)
	CountChildDirectories(dirID int64) (int64, error)

	// SummarizeFiles returns the number and total size of the files directly
	// inside a directory.
	SummarizeFiles(dirID int64) (count int64, size int64, err error)

	// SearchDirectories and SearchFiles match names against a LIKE pattern
	// (backslash escapes), case-insensitively for ASCII.
	SearchDirectories(pattern string, limit int) ([]*sqlc.Directory, error)
	SearchFiles(pattern string, limit int) ([]*sqlc.File, error)

	// Maintenance

	Stats() (*Stats, error)
	Compact() error

	// OpenWriter opens a bulk writer on a connection of its own.
	OpenWriter(ctx context.Context) (Writer, error)

	Close() error
}

// WriterOpener is the part of Store the cataloguer needs.
type WriterOpener interface {
	OpenWriter(ctx context.Context) (Writer, error)
}

// Writer loads one disk inside a single transaction. Methods other than
// Prepare, Begin and Close must be called between Begin and Commit.
type Writer interface {
	// Prepare compiles the statements used for every entry.
	Prepare(ctx context.Context) error
	Begin(ctx context.Context) error

	// DropIndexes and RebuildIndexes bracket the bulk load. Both run inside
	// the transaction, so a rollback restores the dropped indexes.
	DropIndexes(ctx context.Context) error
	RebuildIndexes(ctx context.Context) error

	CreateDisk(ctx context.Context, attrs *DiskAttrs) (int64, error)

	// UpdateDisk rewrites the scan attributes of an existing disk. Mount
	// commands are left alone.
	UpdateDisk(ctx context.Context, diskID int64, attrs *DiskAttrs) error

	// WipeDiskContents deletes every directory and file of a disk.
	WipeDiskContents(ctx context.Context, diskID int64) error

	InsertDirectory(ctx context.Context, diskID int64, parentID sql.NullInt64, e *Entry, status DirStatus) (int64, error)
	InsertFile(ctx context.Context, dirID int64, e *Entry) (int64, error)
	SetDirectoryItemCount(ctx context.Context, dirID int64, n int) error
	SetDirectoryAccessDenied(ctx context.Context, dirID int64) error
	RootDirectoryID(ctx context.Context, diskID int64) (int64, error)
	// LoadDisk reads a disk row as the transaction sees it.
	LoadDisk(ctx context.Context, diskID int64) (*sqlc.Disk, error)

	Commit() error

	// Close rolls back an uncommitted transaction and releases the
	// connection. It is safe to call more than once and at any stage.
	Close() error
}
