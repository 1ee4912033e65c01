package catalog

import (
	"database/sql"
	"time"
)

// Kind classifies a catalogued entry. The numeric values are persisted in
// files.kind and order directories before every file-like kind.
type Kind int64

const (
	KindDirectory Kind = 4
	KindFile      Kind = 5
	KindSymlink   Kind = 6
	KindOther     Kind = 20
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "dir"
	case KindFile:
		return "file"
	case KindSymlink:
		return "symlink"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Entry is one filesystem object as seen by the walker.
type Entry struct {
	Name        string
	Path        string
	Kind        Kind
	Size        int64
	ModTime     time.Time
	Owner       string
	Group       string
	Permissions uint32
	// DeviceID is the st_dev of the entry; a directory whose DeviceID differs
	// from the scan root's lies on another volume.
	DeviceID uint64
}

// IsDir reports whether the entry is a directory (never true for a symlink).
func (e *Entry) IsDir() bool {
	return e.Kind == KindDirectory
}

// VolumeInfo describes the volume a scan path lives on.
type VolumeInfo struct {
	DeviceName   string
	Label        string
	FSType       string
	TotalBytes   int64
	FreeBytes    int64
	IsVolumeRoot bool
	UUID         string
	DeviceID     uint64
}

// DiskAttrs is everything a cataloguing run writes into a disk row.
type DiskAttrs struct {
	CatalogueID sql.NullInt64
	Name        string
	ScanPath    string
	ScannedAt   time.Time
	Volume      VolumeInfo
}

// DirStatus carries the per-directory flags set while walking.
type DirStatus struct {
	AccessDenied bool
	OtherVolume  bool
}
