package testutil

import (
	"sync"

	"dcat-go/internal/catalog"
)

// StubVolumeIdentifier returns a fixed VolumeInfo, or Err when set.
type StubVolumeIdentifier struct {
	Info catalog.VolumeInfo
	Err  error

	mu    sync.Mutex
	paths []string
}

// NewStubVolumeIdentifier describes a mounted ext4 volume on MockDevice.
func NewStubVolumeIdentifier() *StubVolumeIdentifier {
	return &StubVolumeIdentifier{Info: catalog.VolumeInfo{
		DeviceName:   "/dev/sdb1",
		Label:        "BACKUP",
		FSType:       "ext4",
		TotalBytes:   500 << 30,
		FreeBytes:    120 << 30,
		IsVolumeRoot: true,
		UUID:         "0f3c9a2e-5b1d-4e7a-9c61-2d8f0b4a7e13",
		DeviceID:     MockDevice,
	}}
}

func (s *StubVolumeIdentifier) Identify(path string) (*catalog.VolumeInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = append(s.paths, path)
	if s.Err != nil {
		return nil, s.Err
	}
	info := s.Info
	return &info, nil
}

// Paths returns every path Identify was called with.
func (s *StubVolumeIdentifier) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

var _ catalog.VolumeIdentifier = (*StubVolumeIdentifier)(nil)
