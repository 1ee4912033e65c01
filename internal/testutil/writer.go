package testutil

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"dcat-go/internal/catalog"
	"dcat-go/internal/database/sqlc"
)

// ErrInjected is the error returned by a FailingWriter.
var ErrInjected = errors.New("injected failure")

// FailingOpener wraps a WriterOpener so that the writers it opens fail at a
// chosen method. Method names match the catalog.Writer method names;
// "OpenWriter" makes the open itself fail.
type FailingOpener struct {
	Inner catalog.WriterOpener
	// Method is the writer method to fail.
	Method string
	// After is how many calls to Method succeed before the failure.
	After int
	// Err is returned instead of ErrInjected when set.
	Err error

	mu      sync.Mutex
	writers []*FailingWriter
}

func (o *FailingOpener) err() error {
	if o.Err != nil {
		return o.Err
	}
	return ErrInjected
}

func (o *FailingOpener) OpenWriter(ctx context.Context) (catalog.Writer, error) {
	if o.Method == "OpenWriter" {
		return nil, o.err()
	}
	inner, err := o.Inner.OpenWriter(ctx)
	if err != nil {
		return nil, err
	}
	w := &FailingWriter{inner: inner, method: o.Method, after: o.After, err: o.err()}
	o.mu.Lock()
	o.writers = append(o.writers, w)
	o.mu.Unlock()
	return w, nil
}

// Writers returns the writers opened so far.
func (o *FailingOpener) Writers() []*FailingWriter {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*FailingWriter(nil), o.writers...)
}

// FailingWriter forwards to a real writer until the configured method has
// been called After times, then returns its error.
type FailingWriter struct {
	inner  catalog.Writer
	method string
	after  int
	err    error

	mu     sync.Mutex
	calls  map[string]int
	closed bool
}

func (w *FailingWriter) check(method string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.calls == nil {
		w.calls = make(map[string]int)
	}
	w.calls[method]++
	if method == w.method && w.calls[method] > w.after {
		return w.err
	}
	return nil
}

// Calls returns how many times method has been called.
func (w *FailingWriter) Calls(method string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls[method]
}

// Closed reports whether Close has been called.
func (w *FailingWriter) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *FailingWriter) Prepare(ctx context.Context) error {
	if err := w.check("Prepare"); err != nil {
		return err
	}
	return w.inner.Prepare(ctx)
}

func (w *FailingWriter) Begin(ctx context.Context) error {
	if err := w.check("Begin"); err != nil {
		return err
	}
	return w.inner.Begin(ctx)
}

func (w *FailingWriter) DropIndexes(ctx context.Context) error {
	if err := w.check("DropIndexes"); err != nil {
		return err
	}
	return w.inner.DropIndexes(ctx)
}

func (w *FailingWriter) RebuildIndexes(ctx context.Context) error {
	if err := w.check("RebuildIndexes"); err != nil {
		return err
	}
	return w.inner.RebuildIndexes(ctx)
}

func (w *FailingWriter) CreateDisk(ctx context.Context, attrs *catalog.DiskAttrs) (int64, error) {
	if err := w.check("CreateDisk"); err != nil {
		return 0, err
	}
	return w.inner.CreateDisk(ctx, attrs)
}

func (w *FailingWriter) UpdateDisk(ctx context.Context, diskID int64, attrs *catalog.DiskAttrs) error {
	if err := w.check("UpdateDisk"); err != nil {
		return err
	}
	return w.inner.UpdateDisk(ctx, diskID, attrs)
}

func (w *FailingWriter) WipeDiskContents(ctx context.Context, diskID int64) error {
	if err := w.check("WipeDiskContents"); err != nil {
		return err
	}
	return w.inner.WipeDiskContents(ctx, diskID)
}

func (w *FailingWriter) InsertDirectory(ctx context.Context, diskID int64, parentID sql.NullInt64, e *catalog.Entry, status catalog.DirStatus) (int64, error) {
	if err := w.check("InsertDirectory"); err != nil {
		return 0, err
	}
	return w.inner.InsertDirectory(ctx, diskID, parentID, e, status)
}

func (w *FailingWriter) InsertFile(ctx context.Context, dirID int64, e *catalog.Entry) (int64, error) {
	if err := w.check("InsertFile"); err != nil {
		return 0, err
	}
	return w.inner.InsertFile(ctx, dirID, e)
}

func (w *FailingWriter) SetDirectoryItemCount(ctx context.Context, dirID int64, n int) error {
	if err := w.check("SetDirectoryItemCount"); err != nil {
		return err
	}
	return w.inner.SetDirectoryItemCount(ctx, dirID, n)
}

func (w *FailingWriter) SetDirectoryAccessDenied(ctx context.Context, dirID int64) error {
	if err := w.check("SetDirectoryAccessDenied"); err != nil {
		return err
	}
	return w.inner.SetDirectoryAccessDenied(ctx, dirID)
}

func (w *FailingWriter) RootDirectoryID(ctx context.Context, diskID int64) (int64, error) {
	if err := w.check("RootDirectoryID"); err != nil {
		return 0, err
	}
	return w.inner.RootDirectoryID(ctx, diskID)
}

func (w *FailingWriter) LoadDisk(ctx context.Context, diskID int64) (*sqlc.Disk, error) {
	if err := w.check("LoadDisk"); err != nil {
		return nil, err
	}
	return w.inner.LoadDisk(ctx, diskID)
}

func (w *FailingWriter) Commit() error {
	if err := w.check("Commit"); err != nil {
		return err
	}
	return w.inner.Commit()
}

func (w *FailingWriter) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.inner.Close()
}

var _ catalog.Writer = (*FailingWriter)(nil)
