package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"dcat-go/internal/database/sqlc"
)

// DefaultProgressInterval is how many recorded objects separate two
// ObjectsFound notifications.
const DefaultProgressInterval = 1000

// State is the lifecycle position of a cataloguing run.
type State int

const (
	StateIdle State = iota
	StateInitializing
	StateScanning
	StateReindexing
	StateCommitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateScanning:
		return "scanning"
	case StateReindexing:
		return "reindexing"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Request describes one cataloguing run.
type Request struct {
	// Path is the root of the tree to catalogue.
	Path     string
	DiskName string
	// CatalogueID is the catalogue the disk belongs to; invalid means the
	// disk sits at the root level.
	CatalogueID sql.NullInt64
	// ReplaceDiskID, when valid, names an existing disk whose contents are
	// replaced. Its id is kept.
	ReplaceDiskID sql.NullInt64
}

// Observer is notified from the goroutine running the catalogue. The final
// outcome is the return value of Run, not an Observer call.
type Observer interface {
	// ObjectsFound reports the running object count every progress interval.
	ObjectsFound(n int64)
	// Reindexing is called once, when enumeration has finished and the
	// indexes are being rebuilt.
	Reindexing()
}

type NopObserver struct{}

func (NopObserver) ObjectsFound(int64) {}
func (NopObserver) Reindexing()        {}

// Result is returned by Run on success and failure alike. On failure DiskID
// and RootDirectoryID refer to rows that were rolled back.
type Result struct {
	DiskID          int64
	RootDirectoryID int64
	// Objects counts the root directory and every recorded entry.
	Objects      int64
	AccessDenied []string
	State        State
	// Disk is the disk row as committed. It is nil unless the run committed.
	Disk *sqlc.Disk
}

// Cataloguer records directory trees into the catalog, one transaction per
// run.
type Cataloguer struct {
	store            WriterOpener
	volumes          VolumeIdentifier
	fs               Filesystem
	logger           Logger
	clock            Clock
	progressInterval int64
}

func NewCataloguer(store WriterOpener, volumes VolumeIdentifier, fsys Filesystem, logger Logger, clock Clock) *Cataloguer {
	return &Cataloguer{
		store:            store,
		volumes:          volumes,
		fs:               fsys,
		logger:           logger,
		clock:            clock,
		progressInterval: DefaultProgressInterval,
	}
}

// SetProgressInterval changes how often ObjectsFound fires. Values below 1
// are ignored.
func (c *Cataloguer) SetProgressInterval(n int64) {
	if n > 0 {
		c.progressInterval = n
	}
}

// Run catalogues req.Path and blocks until the run has committed or been
// rolled back. Cancelling ctx aborts the run with a StepCancelled error.
func (c *Cataloguer) Run(ctx context.Context, req Request, obs Observer) (*Result, error) {
	if obs == nil {
		obs = NopObserver{}
	}
	s := &session{
		c:      c,
		req:    req,
		obs:    obs,
		result: &Result{State: StateIdle},
	}

	c.logger.Info("cataloguing started", "path", req.Path, "disk", req.DiskName, "replace", req.ReplaceDiskID.Valid)
	err := s.run(ctx)
	s.close()

	if err != nil {
		s.setState(StateFailed)
		var ce *CatalogError
		if errors.As(err, &ce) && ce.Step == StepCancelled {
			c.logger.Warn("cataloguing cancelled", "path", req.Path, "objects", s.result.Objects)
		} else {
			c.logger.Error("cataloguing failed", "path", req.Path, "error", err)
		}
		return s.result, err
	}

	c.logger.Info("cataloguing finished", "path", req.Path, "disk_id", s.result.DiskID,
		"objects", s.result.Objects, "access_denied", len(s.result.AccessDenied))
	return s.result, nil
}

// Job is a Run executing on its own goroutine.
type Job struct {
	cancel context.CancelFunc
	done   chan struct{}
	result *Result
	err    error
}

// Start runs the request in the background. Observer methods are called on
// the job's goroutine.
func (c *Cataloguer) Start(ctx context.Context, req Request, obs Observer) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(j.done)
		defer cancel()
		j.result, j.err = c.Run(ctx, req, obs)
	}()
	return j
}

// Cancel asks the job to stop. It returns immediately; use Wait for the
// outcome.
func (j *Job) Cancel() { j.cancel() }

func (j *Job) Done() <-chan struct{} { return j.done }

func (j *Job) Wait() (*Result, error) {
	<-j.done
	return j.result, j.err
}

// session holds the state of a single run and acts as the walker's Visitor.
type session struct {
	c      *Cataloguer
	req    Request
	obs    Observer
	w      Writer
	result *Result
}

func (s *session) setState(st State) {
	s.result.State = st
	s.c.logger.Debug("cataloguer state", "state", st.String())
}

// fail classifies err at step. Anything that goes wrong once ctx is done is
// reported as a cancellation.
func (s *session) fail(ctx context.Context, step Step, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stepError(StepCancelled, ctxErr)
	}
	return stepError(step, err)
}

func (s *session) run(ctx context.Context) error {
	s.setState(StateInitializing)

	path, err := filepath.Abs(s.req.Path)
	if err != nil {
		return s.fail(ctx, StepResolveRoot, fmt.Errorf("resolving absolute path: %w", err))
	}

	w, err := s.c.store.OpenWriter(ctx)
	if err != nil {
		return s.fail(ctx, StepOpenConnection, err)
	}
	s.w = w

	if err := w.Prepare(ctx); err != nil {
		return s.fail(ctx, StepPrepareStatements, err)
	}

	vol, err := s.c.volumes.Identify(path)
	if err != nil {
		return s.fail(ctx, StepResolveVolume, err)
	}

	root, err := s.c.fs.Stat(path)
	if err != nil {
		return s.fail(ctx, StepResolveRoot, err)
	}
	if !root.IsDir() {
		return s.fail(ctx, StepResolveRoot, fmt.Errorf("not a directory: %s", path))
	}
	rootDenied := !s.c.fs.Readable(path)

	if err := w.Begin(ctx); err != nil {
		return s.fail(ctx, StepBeginTransaction, err)
	}

	attrs := &DiskAttrs{
		CatalogueID: s.req.CatalogueID,
		Name:        s.req.DiskName,
		ScanPath:    path,
		ScannedAt:   s.c.clock.Now(),
		Volume:      *vol,
	}

	var diskID int64
	if s.req.ReplaceDiskID.Valid {
		diskID = s.req.ReplaceDiskID.Int64
		// Wipe while the indexes still exist: the deletes look rows up by
		// disk_id, parent_id and directory_id.
		if err := w.WipeDiskContents(ctx, diskID); err != nil {
			return s.fail(ctx, StepWipeDisk, err)
		}
		if err := w.DropIndexes(ctx); err != nil {
			return s.fail(ctx, StepDropIndexes, err)
		}
		if err := w.UpdateDisk(ctx, diskID, attrs); err != nil {
			return s.fail(ctx, StepUpdateDisk, err)
		}
	} else {
		if err := w.DropIndexes(ctx); err != nil {
			return s.fail(ctx, StepDropIndexes, err)
		}
		diskID, err = w.CreateDisk(ctx, attrs)
		if err != nil {
			return s.fail(ctx, StepCreateDisk, err)
		}
	}
	s.result.DiskID = diskID

	if _, err := w.InsertDirectory(ctx, diskID, sql.NullInt64{}, root, DirStatus{AccessDenied: rootDenied}); err != nil {
		return s.fail(ctx, StepCreateRootDirectory, err)
	}
	rootID, err := w.RootDirectoryID(ctx, diskID)
	if err != nil {
		return s.fail(ctx, StepLoadRootDirectory, err)
	}
	s.result.RootDirectoryID = rootID
	s.countObject()

	s.setState(StateScanning)
	if rootDenied {
		s.c.logger.Warn("access denied", "path", path)
		s.result.AccessDenied = append(s.result.AccessDenied, path)
	} else {
		walker := NewWalker(s.c.fs, s.c.logger)
		outcome, err := walker.Walk(ctx, path, rootID, root.DeviceID, s)
		if outcome != nil {
			s.result.AccessDenied = append(s.result.AccessDenied, outcome.AccessDenied...)
		}
		if err != nil {
			var ce *CatalogError
			if errors.As(err, &ce) {
				return ce
			}
			return s.fail(ctx, StepCancelled, err)
		}
	}

	s.setState(StateReindexing)
	s.obs.Reindexing()
	if err := w.RebuildIndexes(ctx); err != nil {
		return s.fail(ctx, StepRebuildIndexes, err)
	}
	disk, err := w.LoadDisk(ctx, diskID)
	if err != nil {
		return s.fail(ctx, StepLoadDisk, err)
	}

	if err := w.Commit(); err != nil {
		return s.fail(ctx, StepCommit, err)
	}
	s.result.Disk = disk
	s.setState(StateCommitted)
	return nil
}

// close releases the writer. Close rolls back anything not committed.
func (s *session) close() {
	if s.w == nil {
		return
	}
	if err := s.w.Close(); err != nil {
		s.c.logger.Warn("closing catalog writer", "error", err)
	}
}

func (s *session) countObject() {
	s.result.Objects++
	if s.result.Objects%s.c.progressInterval == 0 {
		s.obs.ObjectsFound(s.result.Objects)
	}
}

func (s *session) ItemCount(ctx context.Context, dirID int64, n int) error {
	if err := s.w.SetDirectoryItemCount(ctx, dirID, n); err != nil {
		return s.fail(ctx, StepSetItemCount, err)
	}
	return nil
}

func (s *session) Directory(ctx context.Context, parentID int64, e *Entry, status DirStatus) (int64, error) {
	id, err := s.w.InsertDirectory(ctx, s.result.DiskID, sql.NullInt64{Int64: parentID, Valid: true}, e, status)
	if err != nil {
		return 0, s.fail(ctx, StepInsertDirectory, err)
	}
	s.countObject()
	return id, nil
}

func (s *session) File(ctx context.Context, dirID int64, e *Entry) error {
	if _, err := s.w.InsertFile(ctx, dirID, e); err != nil {
		return s.fail(ctx, StepInsertFile, err)
	}
	s.countObject()
	return nil
}

func (s *session) AccessDenied(ctx context.Context, dirID int64) error {
	if err := s.w.SetDirectoryAccessDenied(ctx, dirID); err != nil {
		return s.fail(ctx, StepMarkAccessDenied, err)
	}
	return nil
}

var _ Visitor = (*session)(nil)
