package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dcat-go/internal/catalog"
	"dcat-go/internal/database/sqlc"
)

const (
	insertDirectorySQL = `INSERT INTO directories
    (disk_id, parent_id, name, modified_at, owner, grp, permissions, access_denied, other_volume)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertFileSQL = `INSERT INTO files
    (directory_id, name, size, kind, modified_at, owner, grp, permissions)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	setItemCountSQL = `UPDATE directories SET item_count = ? WHERE id = ?`

	setAccessDeniedSQL = `UPDATE directories SET access_denied = 1 WHERE id = ?`
)

// permissionMask keeps the permission, setuid, setgid and sticky bits.
const permissionMask = 0o7777

// bulkIndexes are dropped before a disk is loaded and recreated afterwards.
var bulkIndexes = []struct {
	name   string
	create string
}{
	{"directories_disk_id_idx", "CREATE INDEX IF NOT EXISTS directories_disk_id_idx ON directories(disk_id)"},
	{"directories_parent_id_idx", "CREATE INDEX IF NOT EXISTS directories_parent_id_idx ON directories(parent_id)"},
	{"files_directory_id_idx", "CREATE INDEX IF NOT EXISTS files_directory_id_idx ON files(directory_id)"},
	{"directories_name_idx", "CREATE INDEX IF NOT EXISTS directories_name_idx ON directories(name COLLATE NOCASE)"},
}

var errNoTransaction = errors.New("no transaction in progress")

// SQLiteWriter implements catalog.Writer over a dedicated connection. All
// writes of one run go through a single transaction.
type SQLiteWriter struct {
	db      *sql.DB
	queries *sqlc.Queries

	insertDir       *sql.Stmt
	insertFile      *sql.Stmt
	setItemCount    *sql.Stmt
	setAccessDenied *sql.Stmt

	tx     *sql.Tx
	txStmt struct {
		insertDir       *sql.Stmt
		insertFile      *sql.Stmt
		setItemCount    *sql.Stmt
		setAccessDenied *sql.Stmt
	}
	committed bool
	closed    bool
}

// NewSQLiteWriter opens a new connection pool of size one on dsn.
func NewSQLiteWriter(ctx context.Context, dsn string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening writer connection: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting writer: %w", err)
	}
	return &SQLiteWriter{db: db, queries: sqlc.New(db)}, nil
}

func (w *SQLiteWriter) Prepare(ctx context.Context) error {
	var err error
	if w.insertDir, err = w.db.PrepareContext(ctx, insertDirectorySQL); err != nil {
		return fmt.Errorf("preparing directory insert: %w", err)
	}
	if w.insertFile, err = w.db.PrepareContext(ctx, insertFileSQL); err != nil {
		return fmt.Errorf("preparing file insert: %w", err)
	}
	if w.setItemCount, err = w.db.PrepareContext(ctx, setItemCountSQL); err != nil {
		return fmt.Errorf("preparing item count update: %w", err)
	}
	if w.setAccessDenied, err = w.db.PrepareContext(ctx, setAccessDeniedSQL); err != nil {
		return fmt.Errorf("preparing access denied update: %w", err)
	}
	return nil
}

// Begin starts the run's transaction and binds the prepared statements to
// it. Prepare must have been called.
func (w *SQLiteWriter) Begin(ctx context.Context) error {
	if w.insertDir == nil {
		return errors.New("statements not prepared")
	}
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	w.tx = tx
	w.queries = w.queries.WithTx(tx)
	w.txStmt.insertDir = tx.StmtContext(ctx, w.insertDir)
	w.txStmt.insertFile = tx.StmtContext(ctx, w.insertFile)
	w.txStmt.setItemCount = tx.StmtContext(ctx, w.setItemCount)
	w.txStmt.setAccessDenied = tx.StmtContext(ctx, w.setAccessDenied)
	return nil
}

func (w *SQLiteWriter) DropIndexes(ctx context.Context) error {
	if w.tx == nil {
		return errNoTransaction
	}
	for _, idx := range bulkIndexes {
		if _, err := w.tx.ExecContext(ctx, "DROP INDEX IF EXISTS "+idx.name); err != nil {
			return fmt.Errorf("dropping index %s: %w", idx.name, err)
		}
	}
	return nil
}

func (w *SQLiteWriter) RebuildIndexes(ctx context.Context) error {
	if w.tx == nil {
		return errNoTransaction
	}
	for _, idx := range bulkIndexes {
		if _, err := w.tx.ExecContext(ctx, idx.create); err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}
	return nil
}

func (w *SQLiteWriter) CreateDisk(ctx context.Context, attrs *catalog.DiskAttrs) (int64, error) {
	if w.tx == nil {
		return 0, errNoTransaction
	}
	d, err := w.queries.InsertDisk(ctx, sqlc.InsertDiskParams{
		CatalogueID:  attrs.CatalogueID,
		Name:         attrs.Name,
		ScanPath:     attrs.ScanPath,
		ScannedAt:    attrs.ScannedAt.Unix(),
		DeviceName:   attrs.Volume.DeviceName,
		FsLabel:      attrs.Volume.Label,
		FsType:       attrs.Volume.FSType,
		FsSize:       attrs.Volume.TotalBytes,
		FsFree:       attrs.Volume.FreeBytes,
		IsVolumeRoot: attrs.Volume.IsVolumeRoot,
		VolumeUuid:   attrs.Volume.UUID,
	})
	if err != nil {
		return 0, fmt.Errorf("inserting disk: %w", err)
	}
	return d.ID, nil
}

func (w *SQLiteWriter) UpdateDisk(ctx context.Context, diskID int64, attrs *catalog.DiskAttrs) error {
	if w.tx == nil {
		return errNoTransaction
	}
	n, err := w.queries.UpdateDiskScan(ctx, sqlc.UpdateDiskScanParams{
		CatalogueID:  attrs.CatalogueID,
		Name:         attrs.Name,
		ScanPath:     attrs.ScanPath,
		ScannedAt:    attrs.ScannedAt.Unix(),
		DeviceName:   attrs.Volume.DeviceName,
		FsLabel:      attrs.Volume.Label,
		FsType:       attrs.Volume.FSType,
		FsSize:       attrs.Volume.TotalBytes,
		FsFree:       attrs.Volume.FreeBytes,
		IsVolumeRoot: attrs.Volume.IsVolumeRoot,
		VolumeUuid:   attrs.Volume.UUID,
		ID:           diskID,
	})
	if err := checkAffected(n, err, "disk", diskID); err != nil {
		return fmt.Errorf("updating disk: %w", err)
	}
	return nil
}

func (w *SQLiteWriter) WipeDiskContents(ctx context.Context, diskID int64) error {
	if w.tx == nil {
		return errNoTransaction
	}
	if err := w.queries.DeleteFilesByDisk(ctx, diskID); err != nil {
		return fmt.Errorf("deleting files: %w", err)
	}
	if err := w.queries.DeleteDirectoriesByDisk(ctx, diskID); err != nil {
		return fmt.Errorf("deleting directories: %w", err)
	}
	return nil
}

// InsertDirectory records a directory. A directory without a parent is the
// disk's root and is stored without a name.
func (w *SQLiteWriter) InsertDirectory(ctx context.Context, diskID int64, parentID sql.NullInt64, e *catalog.Entry, status catalog.DirStatus) (int64, error) {
	if w.tx == nil {
		return 0, errNoTransaction
	}
	name := sql.NullString{String: e.Name, Valid: parentID.Valid}
	res, err := w.txStmt.insertDir.ExecContext(ctx,
		diskID,
		parentID,
		name,
		e.ModTime.Unix(),
		e.Owner,
		e.Group,
		int64(e.Permissions&permissionMask),
		status.AccessDenied,
		status.OtherVolume,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting directory %s: %w", e.Path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading directory id: %w", err)
	}
	return id, nil
}

func (w *SQLiteWriter) InsertFile(ctx context.Context, dirID int64, e *catalog.Entry) (int64, error) {
	if w.tx == nil {
		return 0, errNoTransaction
	}
	size := e.Size
	if e.Kind == catalog.KindSymlink {
		size = 0
	}
	res, err := w.txStmt.insertFile.ExecContext(ctx,
		dirID,
		e.Name,
		size,
		int64(e.Kind),
		e.ModTime.Unix(),
		e.Owner,
		e.Group,
		int64(e.Permissions&permissionMask),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting file %s: %w", e.Path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading file id: %w", err)
	}
	return id, nil
}

func (w *SQLiteWriter) SetDirectoryItemCount(ctx context.Context, dirID int64, n int) error {
	if w.tx == nil {
		return errNoTransaction
	}
	if _, err := w.txStmt.setItemCount.ExecContext(ctx, n, dirID); err != nil {
		return fmt.Errorf("setting item count of directory %d: %w", dirID, err)
	}
	return nil
}

func (w *SQLiteWriter) SetDirectoryAccessDenied(ctx context.Context, dirID int64) error {
	if w.tx == nil {
		return errNoTransaction
	}
	if _, err := w.txStmt.setAccessDenied.ExecContext(ctx, dirID); err != nil {
		return fmt.Errorf("flagging directory %d: %w", dirID, err)
	}
	return nil
}

func (w *SQLiteWriter) RootDirectoryID(ctx context.Context, diskID int64) (int64, error) {
	if w.tx == nil {
		return 0, errNoTransaction
	}
	d, err := w.queries.GetRootDirectoryByDisk(ctx, diskID)
	if err != nil {
		return 0, fmt.Errorf("loading root directory of disk %d: %w", diskID, err)
	}
	return d.ID, nil
}

func (w *SQLiteWriter) LoadDisk(ctx context.Context, diskID int64) (*sqlc.Disk, error) {
	if w.tx == nil {
		return nil, errNoTransaction
	}
	d, err := w.queries.GetDiskByID(ctx, diskID)
	if err != nil {
		return nil, fmt.Errorf("loading disk %d: %w", diskID, err)
	}
	return &d, nil
}

func (w *SQLiteWriter) Commit() error {
	if w.tx == nil {
		return errNoTransaction
	}
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	w.committed = true
	return nil
}

// Close rolls back an open transaction, then closes the statements and the
// connection.
func (w *SQLiteWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if w.tx != nil && !w.committed {
		if err := w.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("rolling back: %w", err))
		}
	}
	for _, stmt := range []*sql.Stmt{w.insertDir, w.insertFile, w.setItemCount, w.setAccessDenied} {
		if stmt == nil {
			continue
		}
		if err := stmt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing statement: %w", err))
		}
	}
	if err := w.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing connection: %w", err))
	}
	return errors.Join(errs...)
}

var _ catalog.Writer = (*SQLiteWriter)(nil)
