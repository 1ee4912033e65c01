//go:build !linux

package volume

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"dcat-go/internal/catalog"
)

// Identify only knows the device number outside Linux; the remaining
// fields stay empty.
func (id *Identifier) Identify(path string) (*catalog.VolumeInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}

	info := &catalog.VolumeInfo{}
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		info.DeviceID = uint64(st.Dev)
	}
	id.logger.Debug("volume metadata limited on this platform", "path", abs)
	return info, nil
}
