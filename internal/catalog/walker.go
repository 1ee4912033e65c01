package catalog

import (
	"context"
	"errors"
	"io/fs"
)

// Visitor receives what a Walker finds. Any error it returns stops the walk
// and is handed back to the caller unchanged.
type Visitor interface {
	// ItemCount is called once per enumerated directory, before any of its
	// children are visited.
	ItemCount(ctx context.Context, dirID int64, n int) error

	// Directory records a child directory and returns its new id.
	Directory(ctx context.Context, parentID int64, e *Entry, status DirStatus) (int64, error)

	// File records a non-directory entry (file, symlink or other).
	File(ctx context.Context, dirID int64, e *Entry) error

	// AccessDenied flags an already recorded directory whose listing failed
	// with a permission error.
	AccessDenied(ctx context.Context, dirID int64) error
}

// WalkOutcome summarizes a walk. It is returned even when the walk fails.
type WalkOutcome struct {
	Directories    int64
	Files          int64
	ForeignVolumes int64
	// AccessDenied lists the absolute paths of directories that could not
	// be enumerated, each once, in discovery order.
	AccessDenied []string
}

// Walker traverses a directory tree depth first using an explicit stack, so
// tree depth never grows the goroutine stack.
type Walker struct {
	fs     Filesystem
	logger Logger
}

func NewWalker(fsys Filesystem, logger Logger) *Walker {
	return &Walker{fs: fsys, logger: logger}
}

type pendingDir struct {
	path string
	id   int64
}

// Walk enumerates root (already recorded as rootDirID) and everything below
// it that lives on volumeID. Directories on other volumes are recorded but
// not entered.
func (w *Walker) Walk(ctx context.Context, root string, rootDirID int64, volumeID uint64, v Visitor) (*WalkOutcome, error) {
	out := &WalkOutcome{}
	stack := []pendingDir{{path: root, id: rootDirID}}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := ctx.Err(); err != nil {
			return out, err
		}

		entries, err := w.fs.ReadDir(dir.path)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				w.logger.Warn("access denied", "path", dir.path)
				out.AccessDenied = append(out.AccessDenied, dir.path)
				if err := v.AccessDenied(ctx, dir.id); err != nil {
					return out, err
				}
				continue
			}
			w.logger.Warn("listing directory failed, recording it as empty", "path", dir.path, "error", err)
			entries = nil
		}

		if err := v.ItemCount(ctx, dir.id, len(entries)); err != nil {
			return out, err
		}

		var children []pendingDir
		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				return out, err
			}

			if !e.IsDir() {
				if err := v.File(ctx, dir.id, e); err != nil {
					return out, err
				}
				out.Files++
				continue
			}

			var status DirStatus
			if e.DeviceID != volumeID {
				status.OtherVolume = true
			} else if !w.fs.Readable(e.Path) {
				status.AccessDenied = true
			}

			id, err := v.Directory(ctx, dir.id, e, status)
			if err != nil {
				return out, err
			}
			out.Directories++

			switch {
			case status.OtherVolume:
				w.logger.Info("not crossing into another volume", "path", e.Path)
				out.ForeignVolumes++
			case status.AccessDenied:
				w.logger.Warn("access denied", "path", e.Path)
				out.AccessDenied = append(out.AccessDenied, e.Path)
			default:
				children = append(children, pendingDir{path: e.Path, id: id})
			}
		}

		// Push in reverse so subdirectories are entered in listing order.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return out, nil
}
