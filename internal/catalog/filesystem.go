package catalog

// Filesystem is the read-only view of the tree being catalogued.
type Filesystem interface {
	// Stat returns the entry at path, following a final symlink. Used for the
	// scan root only.
	Stat(path string) (*Entry, error)

	// ReadDir lists the direct children of a directory without following
	// symlinks, hidden entries included and "." and ".." excluded. A
	// permission failure must be reported as an error satisfying
	// errors.Is(err, fs.ErrPermission).
	ReadDir(path string) ([]*Entry, error)

	// Readable reports whether the directory at path can be listed.
	Readable(path string) bool
}

// VolumeIdentifier resolves volume metadata for a path. It never mutates
// anything.
type VolumeIdentifier interface {
	Identify(path string) (*VolumeInfo, error)
}
