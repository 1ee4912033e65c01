package catalog

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"dcat-go/internal/database/sqlc"
)

// DefaultSearchLimit caps the number of hits Search returns when the caller
// passes no limit.
const DefaultSearchLimit = 500

// SearchHit is one directory or file whose name matched a search.
type SearchHit struct {
	Kind     Kind
	ID       int64
	DiskID   int64
	DiskName string
	// Path is the location inside the disk, "/" being the scan root.
	Path string
	// FullPath is Path joined to the disk's scan path.
	FullPath string
	Size     int64
}

// Search finds directories and files whose name contains text, ignoring
// ASCII case. Directories come first. At most limit hits are returned.
func (s *Service) Search(text string, limit int) ([]*SearchHit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("search text must not be empty")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	pattern := "%" + escapeLike(text) + "%"

	dirs, err := s.store.SearchDirectories(pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching directories: %w", err)
	}
	var files []*sqlc.File
	if remaining := limit - len(dirs); remaining > 0 {
		files, err = s.store.SearchFiles(pattern, remaining)
		if err != nil {
			return nil, fmt.Errorf("searching files: %w", err)
		}
	}

	r := newPathResolver(s.store)
	hits := make([]*SearchHit, 0, len(dirs)+len(files))
	for _, d := range dirs {
		p, err := r.directoryPath(d.ID)
		if err != nil {
			return nil, err
		}
		hit, err := r.hit(KindDirectory, d.ID, d.DiskID, p, 0)
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	for _, f := range files {
		parent, err := r.directory(f.DirectoryID)
		if err != nil {
			return nil, err
		}
		dirPath, err := r.directoryPath(parent.ID)
		if err != nil {
			return nil, err
		}
		hit, err := r.hit(Kind(f.Kind), f.ID, parent.DiskID, path.Join(dirPath, f.Name), f.Size)
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}

	s.logger.Debug("search finished", "text", text, "hits", len(hits))
	return hits, nil
}

// DirectoryPath returns the location of a directory inside its disk.
func (s *Service) DirectoryPath(dirID int64) (string, error) {
	return newPathResolver(s.store).directoryPath(dirID)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// pathResolver rebuilds paths by following parent ids, caching every
// directory and disk it loads.
type pathResolver struct {
	store Store
	dirs  map[int64]*sqlc.Directory
	paths map[int64]string
	disks map[int64]*sqlc.Disk
}

func newPathResolver(store Store) *pathResolver {
	return &pathResolver{
		store: store,
		dirs:  make(map[int64]*sqlc.Directory),
		paths: make(map[int64]string),
		disks: make(map[int64]*sqlc.Disk),
	}
}

func (r *pathResolver) directory(id int64) (*sqlc.Directory, error) {
	if d, ok := r.dirs[id]; ok {
		return d, nil
	}
	d, err := r.store.FindDirectory(id)
	if err != nil {
		return nil, fmt.Errorf("finding directory %d: %w", id, err)
	}
	if d == nil {
		return nil, fmt.Errorf("directory %d: %w", id, ErrNotFound)
	}
	r.dirs[id] = d
	return d, nil
}

func (r *pathResolver) directoryPath(id int64) (string, error) {
	var names []string
	cur := id
	prefix := "/"
	for {
		if p, ok := r.paths[cur]; ok {
			prefix = p
			break
		}
		d, err := r.directory(cur)
		if err != nil {
			return "", err
		}
		if !d.ParentID.Valid {
			r.paths[cur] = "/"
			break
		}
		names = append(names, d.Name.String)
		cur = d.ParentID.Int64
	}

	p := prefix
	for i := len(names) - 1; i >= 0; i-- {
		p = path.Join(p, names[i])
	}
	r.paths[id] = p
	return p, nil
}

func (r *pathResolver) hit(kind Kind, id, diskID int64, p string, size int64) (*SearchHit, error) {
	disk, ok := r.disks[diskID]
	if !ok {
		var err error
		disk, err = r.store.FindDisk(diskID)
		if err != nil {
			return nil, fmt.Errorf("finding disk %d: %w", diskID, err)
		}
		if disk == nil {
			return nil, fmt.Errorf("disk %d: %w", diskID, ErrNotFound)
		}
		r.disks[diskID] = disk
	}
	return &SearchHit{
		Kind:     kind,
		ID:       id,
		DiskID:   diskID,
		DiskName: disk.Name,
		Path:     p,
		FullPath: filepath.Join(disk.ScanPath, filepath.FromSlash(p)),
		Size:     size,
	}, nil
}
