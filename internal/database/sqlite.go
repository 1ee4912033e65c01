package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dcat-go/internal/catalog"
	"dcat-go/internal/database/migrations"
	"dcat-go/internal/database/sqlc"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// MemoryPath selects a private database that does not outlive the store.
const MemoryPath = ":memory:"

// SQLiteStore implements catalog.Store on a SQLite database file.
type SQLiteStore struct {
	db      *sql.DB
	queries *sqlc.Queries
	path    string
	dsn     string
	// tempDir holds the backing file of a MemoryPath store.
	tempDir string
}

// NewSQLiteStore opens the catalog database at path. For MemoryPath the
// database lives in a temporary WAL file that Close removes; SQLite's own
// in-memory databases lock readers out while a write transaction is open.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	file, tempDir := path, ""
	if path == MemoryPath {
		dir, err := os.MkdirTemp("", "dcat-")
		if err != nil {
			return nil, fmt.Errorf("creating temporary database directory: %w", err)
		}
		file, tempDir = filepath.Join(dir, "catalog.db"), dir
	}

	dsn := DataSourceName(file)
	db, err := openDSN(dsn)
	if err != nil {
		if tempDir != "" {
			os.RemoveAll(tempDir)
		}
		return nil, err
	}

	return &SQLiteStore{
		db:      db,
		queries: sqlc.New(db),
		path:    path,
		dsn:     dsn,
		tempDir: tempDir,
	}, nil
}

// DataSourceName builds the go-sqlite3 DSN for path. Every connection gets
// foreign keys and a busy timeout; file databases also use WAL so readers
// are not blocked while a disk is being catalogued. MemoryPath maps to a
// uniquely named memdb database shared by every connection of the pool.
func DataSourceName(path string) string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", "5000")

	if path == MemoryPath {
		params.Set("vfs", "memdb")
		return "file:/dcat-" + uuid.New().String() + "?" + params.Encode()
	}

	params.Set("_journal_mode", "WAL")
	return "file:" + uriPathEscaper.Replace(path) + "?" + params.Encode()
}

var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// OpenConnection opens and configures a SQLite connection for path.
// Exported for tools and tests that need a raw *sql.DB.
func OpenConnection(path string) (*sql.DB, error) {
	return openDSN(DataSourceName(path))
}

func openDSN(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, catalog.ErrNotFound)
}

func checkAffected(n int64, err error, kind string, id int64) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(kind, id)
	}
	return nil
}

// Catalogue operations

func (s *SQLiteStore) CreateCatalogue(name string) (*sqlc.Catalogue, error) {
	c, err := s.queries.InsertCatalogue(context.Background(), name)
	if err != nil {
		return nil, fmt.Errorf("inserting catalogue: %w", err)
	}
	return &c, nil
}

func (s *SQLiteStore) FindCatalogue(id int64) (*sqlc.Catalogue, error) {
	c, err := s.queries.GetCatalogueByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding catalogue: %w", err)
	}
	return &c, nil
}

func (s *SQLiteStore) ListCatalogues() ([]*sqlc.Catalogue, error) {
	rows, err := s.queries.GetCatalogues(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing catalogues: %w", err)
	}
	return pointers(rows), nil
}

func (s *SQLiteStore) RenameCatalogue(id int64, name string) error {
	n, err := s.queries.RenameCatalogue(context.Background(), sqlc.RenameCatalogueParams{Name: name, ID: id})
	return checkAffected(n, err, "catalogue", id)
}

func (s *SQLiteStore) DeleteCatalogue(id int64) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	cid := sql.NullInt64{Int64: id, Valid: true}

	if err := qtx.DeleteFilesByCatalogue(ctx, cid); err != nil {
		return fmt.Errorf("deleting files: %w", err)
	}
	if err := qtx.DeleteDirectoriesByCatalogue(ctx, cid); err != nil {
		return fmt.Errorf("deleting directories: %w", err)
	}
	if err := qtx.DeleteDisksByCatalogue(ctx, cid); err != nil {
		return fmt.Errorf("deleting disks: %w", err)
	}
	n, err := qtx.DeleteCatalogueByID(ctx, id)
	if err := checkAffected(n, err, "catalogue", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Disk operations

func (s *SQLiteStore) FindDisk(id int64) (*sqlc.Disk, error) {
	d, err := s.queries.GetDiskByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding disk: %w", err)
	}
	return &d, nil
}

func (s *SQLiteStore) ListDisks(catalogueID sql.NullInt64) ([]*sqlc.Disk, error) {
	rows, err := s.queries.GetDisksByCatalogue(context.Background(), catalogueID)
	if err != nil {
		return nil, fmt.Errorf("listing disks: %w", err)
	}
	return pointers(rows), nil
}

func (s *SQLiteStore) ListAllDisks() ([]*sqlc.Disk, error) {
	rows, err := s.queries.GetAllDisks(context.Background())
	if err != nil {
		return nil, fmt.Errorf("listing disks: %w", err)
	}
	return pointers(rows), nil
}

func (s *SQLiteStore) RenameDisk(id int64, name string) error {
	n, err := s.queries.RenameDisk(context.Background(), sqlc.RenameDiskParams{Name: name, ID: id})
	return checkAffected(n, err, "disk", id)
}

func (s *SQLiteStore) MoveDisk(id int64, catalogueID sql.NullInt64) error {
	n, err := s.queries.MoveDisk(context.Background(), sqlc.MoveDiskParams{CatalogueID: catalogueID, ID: id})
	return checkAffected(n, err, "disk", id)
}

func (s *SQLiteStore) SetDiskCommands(id int64, mount, unmount string) error {
	n, err := s.queries.UpdateDiskCommands(context.Background(), sqlc.UpdateDiskCommandsParams{
		MountCommand:   mount,
		UnmountCommand: unmount,
		ID:             id,
	})
	return checkAffected(n, err, "disk", id)
}

func (s *SQLiteStore) DeleteDisk(id int64) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	if err := qtx.DeleteFilesByDisk(ctx, id); err != nil {
		return fmt.Errorf("deleting files: %w", err)
	}
	if err := qtx.DeleteDirectoriesByDisk(ctx, id); err != nil {
		return fmt.Errorf("deleting directories: %w", err)
	}
	n, err := qtx.DeleteDiskByID(ctx, id)
	if err := checkAffected(n, err, "disk", id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Directory and file operations

func (s *SQLiteStore) FindDirectory(id int64) (*sqlc.Directory, error) {
	d, err := s.queries.GetDirectoryByID(context.Background(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding directory: %w", err)
	}
	return &d, nil
}

func (s *SQLiteStore) FindRootDirectory(diskID int64) (*sqlc.Directory, error) {
	d, err := s.queries.GetRootDirectoryByDisk(context.Background(), diskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding root directory: %w", err)
	}
	return &d, nil
}

func (s *SQLiteStore) ListChildDirectories(dirID int64) ([]*sqlc.Directory, error) {
	rows, err := s.queries.GetChildDirectories(context.Background(), sql.NullInt64{Int64: dirID, Valid: true})
	if err != nil {
		return nil, fmt.Errorf("listing child directories: %w", err)
	}
	return pointers(rows), nil
}

func (s *SQLiteStore) ListFiles(dirID int64) ([]*sqlc.File, error) {
	rows, err := s.queries.GetFilesByDirectory(context.Background(), dirID)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return pointers(rows), nil
}

func (s *SQLiteStore) CountChildDirectories(dirID int64) (int64, error) {
	n, err := s.queries.CountChildDirectories(context.Background(), sql.NullInt64{Int64: dirID, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("counting child directories: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) SummarizeFiles(dirID int64) (int64, int64, error) {
	row, err := s.queries.SummarizeFilesByDirectory(context.Background(), dirID)
	if err != nil {
		return 0, 0, fmt.Errorf("summarizing files: %w", err)
	}
	return row.FileCount, row.TotalSize, nil
}

func (s *SQLiteStore) SearchDirectories(pattern string, limit int) ([]*sqlc.Directory, error) {
	rows, err := s.queries.SearchDirectories(context.Background(), sqlc.SearchDirectoriesParams{
		Name:  sql.NullString{String: pattern, Valid: true},
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("searching directories: %w", err)
	}
	return pointers(rows), nil
}

func (s *SQLiteStore) SearchFiles(pattern string, limit int) ([]*sqlc.File, error) {
	rows, err := s.queries.SearchFiles(context.Background(), sqlc.SearchFilesParams{
		Name:  pattern,
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("searching files: %w", err)
	}
	return pointers(rows), nil
}

// Maintenance

func (s *SQLiteStore) Stats() (*catalog.Stats, error) {
	ctx := context.Background()
	var st catalog.Stats
	var err error

	if st.Catalogues, err = s.queries.CountCatalogues(ctx); err != nil {
		return nil, fmt.Errorf("counting catalogues: %w", err)
	}
	if st.Disks, err = s.queries.CountDisks(ctx); err != nil {
		return nil, fmt.Errorf("counting disks: %w", err)
	}
	if st.Directories, err = s.queries.CountDirectories(ctx); err != nil {
		return nil, fmt.Errorf("counting directories: %w", err)
	}
	if st.Files, err = s.queries.CountFiles(ctx); err != nil {
		return nil, fmt.Errorf("counting files: %w", err)
	}
	if st.TotalBytes, err = s.queries.GetTotalFileSize(ctx); err != nil {
		return nil, fmt.Errorf("summing file sizes: %w", err)
	}

	if s.path != MemoryPath {
		info, err := os.Stat(s.path)
		if err != nil {
			return nil, fmt.Errorf("stat database file: %w", err)
		}
		st.DatabaseBytes = info.Size()
	}
	return &st, nil
}

func (s *SQLiteStore) Compact() error {
	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// OpenWriter opens a writer on its own connection to the same database.
func (s *SQLiteStore) OpenWriter(ctx context.Context) (catalog.Writer, error) {
	return NewSQLiteWriter(ctx, s.dsn)
}

// Operation tracking

func (s *SQLiteStore) CreateOperation(operation string, parameters string) (*sqlc.Operation, error) {
	op, err := s.queries.InsertOperation(context.Background(), sqlc.InsertOperationParams{
		StartedAt:  time.Now(),
		Operation:  operation,
		Parameters: parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return &op, nil
}

func (s *SQLiteStore) FinishOperation(id int64, status string) error {
	err := s.queries.UpdateOperationFinished(context.Background(), sqlc.UpdateOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: time.Now(), Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListOperations(limit int) ([]*sqlc.Operation, error) {
	ops, err := s.queries.GetOperations(context.Background(), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return pointers(ops), nil
}

func (s *SQLiteStore) MaxOperationID() (int64, error) {
	id, err := s.queries.GetMaxOperationID(context.Background())
	if err != nil {
		return 0, fmt.Errorf("getting max operation ID: %w", err)
	}
	return id, nil
}

// Path returns the database file path (or MemoryPath).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Migrate brings the schema to the latest version.
func (s *SQLiteStore) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// BackupTo writes a complete, compacted copy of the database to destPath
// using VACUUM INTO.
func (s *SQLiteStore) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close closes the database connection and removes the file of a
// MemoryPath store.
func (s *SQLiteStore) Close() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.tempDir != "" {
		if rmErr := os.RemoveAll(s.tempDir); rmErr != nil && err == nil {
			err = fmt.Errorf("removing temporary database: %w", rmErr)
		}
		s.tempDir = ""
	}
	return err
}

func pointers[T any](rows []T) []*T {
	result := make([]*T, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result
}

// Compile-time check that SQLiteStore implements catalog.Store
var _ catalog.Store = (*SQLiteStore)(nil)
