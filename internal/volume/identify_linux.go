//go:build linux

package volume

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"

	"dcat-go/internal/catalog"
)

// Identify resolves the device, filesystem and sizes of the volume holding
// path. Label and UUID are best effort.
func (id *Identifier) Identify(path string) (*catalog.VolumeInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	var st unix.Stat_t
	if err := unix.Stat(abs, &st); err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	var sfs unix.Statfs_t
	if err := unix.Statfs(abs, &sfs); err != nil {
		return nil, fmt.Errorf("statfs %s: %w", abs, err)
	}

	info := &catalog.VolumeInfo{
		DeviceID:   uint64(st.Dev),
		TotalBytes: int64(sfs.Blocks) * int64(sfs.Bsize),
		FreeBytes:  int64(sfs.Bfree) * int64(sfs.Bsize),
	}

	mounts, err := readMountInfo(id.mountInfoPath)
	if err != nil {
		id.logger.Warn("mount table unavailable", "error", err)
		return info, nil
	}
	m := findMount(mounts, abs, unix.Major(uint64(st.Dev)), unix.Minor(uint64(st.Dev)))
	if m == nil {
		id.logger.Debug("no mount found", "path", abs)
		return info, nil
	}

	info.DeviceName = m.Source
	info.FSType = m.FSType
	info.IsVolumeRoot = abs == m.MountPoint
	info.UUID = id.linkNameFor(id.byUUIDDir, m.Source)
	info.Label = decodeUdevName(id.linkNameFor(id.byLabelDir, m.Source))

	id.logger.Debug("volume identified", "path", abs, "device", info.DeviceName,
		"fs_type", info.FSType, "mount_point", m.MountPoint, "uuid", info.UUID, "label", info.Label)
	return info, nil
}
