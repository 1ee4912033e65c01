package testutil

import (
	"fmt"
	"io/fs"
	"path"
	"sync"
	"time"

	"dcat-go/internal/catalog"
)

// MockDevice is the device id every entry gets unless SetDevice says
// otherwise.
const MockDevice uint64 = 2049

// MockNode is one entry in the mock filesystem.
type MockNode struct {
	Entry      catalog.Entry
	Children   []string // child paths in listing order
	Unreadable bool
	ReadErr    error
}

// MockFilesystem is an in-memory catalog.Filesystem. Paths are absolute and
// slash separated; parents are created on demand.
type MockFilesystem struct {
	mu        sync.Mutex
	nodes     map[string]*MockNode
	modTime   time.Time
	readCalls int
}

// NewMockFilesystem creates a mock filesystem containing only "/".
func NewMockFilesystem() *MockFilesystem {
	m := &MockFilesystem{
		nodes:   make(map[string]*MockNode),
		modTime: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	m.nodes["/"] = &MockNode{Entry: catalog.Entry{
		Name: "", Path: "/", Kind: catalog.KindDirectory, ModTime: m.modTime,
		Owner: "root", Group: "root", Permissions: 0o755, DeviceID: MockDevice,
	}}
	return m
}

func (m *MockFilesystem) add(p string, kind catalog.Kind, size int64, perm uint32) *MockNode {
	p = path.Clean(p)
	if n, ok := m.nodes[p]; ok {
		return n
	}
	parent := m.add(path.Dir(p), catalog.KindDirectory, 0, 0o755)
	n := &MockNode{Entry: catalog.Entry{
		Name:        path.Base(p),
		Path:        p,
		Kind:        kind,
		Size:        size,
		ModTime:     m.modTime,
		Owner:       "alice",
		Group:       "staff",
		Permissions: perm,
		DeviceID:    parent.Entry.DeviceID,
	}}
	m.nodes[p] = n
	parent.Children = append(parent.Children, p)
	return n
}

// AddDirectory adds a directory and any missing parents.
func (m *MockFilesystem) AddDirectory(p string) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(p, catalog.KindDirectory, 0, 0o755)
}

// AddFile adds a regular file of the given size.
func (m *MockFilesystem) AddFile(p string, size int64) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(p, catalog.KindFile, size, 0o644)
}

// AddSymlink adds a symlink. Symlinks report size 0 and are never followed.
func (m *MockFilesystem) AddSymlink(p string) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(p, catalog.KindSymlink, 0, 0o777)
}

// AddOther adds a special file (fifo, socket, device).
func (m *MockFilesystem) AddOther(p string) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.add(p, catalog.KindOther, 0, 0o600)
}

// SetDevice moves an existing directory onto another device. Entries added
// below it afterwards inherit the device.
func (m *MockFilesystem) SetDevice(p string, dev uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mustNode(p).Entry.DeviceID = dev
}

// SetUnreadable makes Readable report false and ReadDir fail with a
// permission error.
func (m *MockFilesystem) SetUnreadable(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mustNode(p).Unreadable = true
}

// SetReadError makes ReadDir fail with err while Readable still reports true.
func (m *MockFilesystem) SetReadError(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mustNode(p).ReadErr = err
}

// ReadDirCalls returns how many times ReadDir has been called.
func (m *MockFilesystem) ReadDirCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readCalls
}

func (m *MockFilesystem) mustNode(p string) *MockNode {
	n, ok := m.nodes[path.Clean(p)]
	if !ok {
		panic(fmt.Sprintf("testutil: no mock entry at %s", p))
	}
	return n
}

func (m *MockFilesystem) Stat(p string) (*catalog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[path.Clean(p)]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	e := n.Entry
	return &e, nil
}

func (m *MockFilesystem) ReadDir(p string) ([]*catalog.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCalls++

	n, ok := m.nodes[path.Clean(p)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	if n.Unreadable {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrPermission}
	}
	if n.ReadErr != nil {
		return nil, n.ReadErr
	}

	entries := make([]*catalog.Entry, 0, len(n.Children))
	for _, c := range n.Children {
		e := m.nodes[c].Entry
		entries = append(entries, &e)
	}
	return entries, nil
}

func (m *MockFilesystem) Readable(p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[path.Clean(p)]
	return ok && !n.Unreadable
}

// Compile-time check
var _ catalog.Filesystem = (*MockFilesystem)(nil)
