package volume

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// mountEntry is one line of /proc/<pid>/mountinfo.
type mountEntry struct {
	Major      uint32
	Minor      uint32
	Root       string
	MountPoint string
	FSType     string
	Source     string
}

func readMountInfo(path string) ([]mountEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mountinfo: %w", err)
	}
	defer f.Close()
	return parseMountInfo(f)
}

// parseMountInfo parses the mountinfo format described in proc(5):
//
//	36 35 98:0 /mnt1 /mnt/parent rw,noatime master:1 - ext3 /dev/root rw
func parseMountInfo(r io.Reader) ([]mountEntry, error) {
	var mounts []mountEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 10 {
			return nil, fmt.Errorf("malformed mountinfo line: %q", line)
		}

		sep := -1
		for i := 6; i < len(fields); i++ {
			if fields[i] == "-" {
				sep = i
				break
			}
		}
		if sep < 0 || sep+2 >= len(fields) {
			return nil, fmt.Errorf("malformed mountinfo line: %q", line)
		}

		major, minor, err := parseDevice(fields[2])
		if err != nil {
			return nil, fmt.Errorf("malformed mountinfo line: %q: %w", line, err)
		}

		mounts = append(mounts, mountEntry{
			Major:      major,
			Minor:      minor,
			Root:       unescapeOctal(fields[3]),
			MountPoint: unescapeOctal(fields[4]),
			FSType:     fields[sep+1],
			Source:     unescapeOctal(fields[sep+2]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mountinfo: %w", err)
	}
	return mounts, nil
}

func parseDevice(s string) (uint32, uint32, error) {
	maj, min, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("bad device %q", s)
	}
	major, err := strconv.ParseUint(maj, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad major in %q: %w", s, err)
	}
	minor, err := strconv.ParseUint(min, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad minor in %q: %w", s, err)
	}
	return uint32(major), uint32(minor), nil
}

// unescapeOctal decodes the \NNN escapes the kernel uses for spaces, tabs,
// newlines and backslashes in mount paths.
func unescapeOctal(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// findMount picks the mount containing path. Mounts of the path's own
// device win; among those the longest mount point wins. When no mount has
// a matching device (bind mounts, overlay roots) the longest prefix is used.
func findMount(mounts []mountEntry, path string, major, minor uint32) *mountEntry {
	var best, fallback *mountEntry
	for i := range mounts {
		m := &mounts[i]
		if !under(path, m.MountPoint) {
			continue
		}
		if m.Major == major && m.Minor == minor {
			if best == nil || len(m.MountPoint) >= len(best.MountPoint) {
				best = m
			}
		}
		if fallback == nil || len(m.MountPoint) >= len(fallback.MountPoint) {
			fallback = m
		}
	}
	if best != nil {
		return best
	}
	return fallback
}

func under(path, mountPoint string) bool {
	if mountPoint == "/" || path == mountPoint {
		return true
	}
	return strings.HasPrefix(path, mountPoint+"/")
}
