// Package volume identifies the volume (mounted filesystem) a path lives on.
package volume

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"dcat-go/internal/catalog"
)

// Identifier implements catalog.VolumeIdentifier for the local machine.
type Identifier struct {
	logger        catalog.Logger
	mountInfoPath string
	byLabelDir    string
	byUUIDDir     string
}

func NewIdentifier(logger catalog.Logger) *Identifier {
	return &Identifier{
		logger:        logger,
		mountInfoPath: "/proc/self/mountinfo",
		byLabelDir:    "/dev/disk/by-label",
		byUUIDDir:     "/dev/disk/by-uuid",
	}
}

// linkNameFor returns the name of the symlink in dir that resolves to the
// same device node as source, or "" when there is none.
func (id *Identifier) linkNameFor(dir, source string) string {
	if !strings.HasPrefix(source, "/") {
		return ""
	}
	device, err := filepath.EvalSymlinks(source)
	if err != nil {
		id.logger.Debug("resolving device node", "device", source, "error", err)
		return ""
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		id.logger.Debug("reading udev links", "dir", dir, "error", err)
		return ""
	}
	for _, e := range entries {
		target, err := filepath.EvalSymlinks(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		if target == device {
			return e.Name()
		}
	}
	return ""
}

// decodeUdevName undoes the \xNN escaping udev applies to by-label names.
func decodeUdevName(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) && s[i+1] == 'x' {
			if v, err := strconv.ParseUint(s[i+2:i+4], 16, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var _ catalog.VolumeIdentifier = (*Identifier)(nil)
