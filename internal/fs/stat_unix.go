//go:build unix

package fs

import (
	"io/fs"
	"syscall"
)

type ownerInfo struct {
	uid uint32
	gid uint32
	dev uint64
}

// statOwner extracts owner ids and the device number from a FileInfo.
func statOwner(info fs.FileInfo) (ownerInfo, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return ownerInfo{}, false
	}
	return ownerInfo{
		uid: stat.Uid,
		gid: stat.Gid,
		dev: uint64(stat.Dev),
	}, true
}
