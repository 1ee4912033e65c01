package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"sync"

	"golang.org/x/sys/unix"

	"dcat-go/internal/catalog"
)

// OSFilesystem is the real filesystem as seen by the walker.
type OSFilesystem struct {
	names *idNames
}

func NewOSFilesystem() *OSFilesystem {
	return &OSFilesystem{names: newIDNames()}
}

// Stat follows a final symlink, so a scan root may be given as a link.
func (f *OSFilesystem) Stat(path string) (*catalog.Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return f.entry(path, info), nil
}

// ReadDir lists a directory in name order. Entries that vanish between the
// listing and their lstat are left out.
func (f *OSFilesystem) ReadDir(path string) ([]*catalog.Entry, error) {
	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}

	entries := make([]*catalog.Entry, 0, len(dirents))
	for _, d := range dirents {
		full := filepath.Join(path, d.Name())
		info, err := os.Lstat(full)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			entries = append(entries, &catalog.Entry{Name: d.Name(), Path: full, Kind: kindOf(d.Type())})
			continue
		}
		entries = append(entries, f.entry(full, info))
	}
	return entries, nil
}

// Readable reports whether the directory can be listed and entered.
func (f *OSFilesystem) Readable(path string) bool {
	return unix.Access(path, unix.R_OK|unix.X_OK) == nil
}

func (f *OSFilesystem) entry(path string, info fs.FileInfo) *catalog.Entry {
	e := &catalog.Entry{
		Name:        info.Name(),
		Path:        path,
		Kind:        kindOf(info.Mode()),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Permissions: permissionBits(info.Mode()),
	}
	if st, ok := statOwner(info); ok {
		e.Owner = f.names.user(st.uid)
		e.Group = f.names.group(st.gid)
		e.DeviceID = st.dev
	}
	return e
}

func kindOf(mode fs.FileMode) catalog.Kind {
	switch {
	case mode.IsDir():
		return catalog.KindDirectory
	case mode&fs.ModeSymlink != 0:
		return catalog.KindSymlink
	case mode.IsRegular():
		return catalog.KindFile
	default:
		return catalog.KindOther
	}
}

// permissionBits converts a FileMode back to the unix st_mode permission
// bits, setuid, setgid and sticky included.
func permissionBits(mode fs.FileMode) uint32 {
	bits := uint32(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		bits |= 0o4000
	}
	if mode&fs.ModeSetgid != 0 {
		bits |= 0o2000
	}
	if mode&fs.ModeSticky != 0 {
		bits |= 0o1000
	}
	return bits
}

// idNames caches uid/gid to name lookups. Unknown ids are kept numeric.
type idNames struct {
	mu     sync.Mutex
	users  map[uint32]string
	groups map[uint32]string
}

func newIDNames() *idNames {
	return &idNames{users: make(map[uint32]string), groups: make(map[uint32]string)}
}

func (n *idNames) user(uid uint32) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if name, ok := n.users[uid]; ok {
		return name
	}
	name := strconv.FormatUint(uint64(uid), 10)
	if u, err := user.LookupId(name); err == nil {
		name = u.Username
	}
	n.users[uid] = name
	return name
}

func (n *idNames) group(gid uint32) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if name, ok := n.groups[gid]; ok {
		return name
	}
	name := strconv.FormatUint(uint64(gid), 10)
	if g, err := user.LookupGroupId(name); err == nil {
		name = g.Name
	}
	n.groups[gid] = name
	return name
}

// Compile-time check that OSFilesystem implements catalog.Filesystem
var _ catalog.Filesystem = (*OSFilesystem)(nil)
