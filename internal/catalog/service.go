package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"dcat-go/internal/database/sqlc"
)

// ErrEmptyName is returned when a catalogue or disk name is blank.
var ErrEmptyName = errors.New("name must not be empty")

// Service implements catalogue and disk administration and browsing on top
// of a Store. Cataloguing itself goes through Cataloguer.
type Service struct {
	store  Store
	logger Logger
}

func NewService(store Store, logger Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Catalogues

func (s *Service) CreateCatalogue(name string) (*sqlc.Catalogue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	c, err := s.store.CreateCatalogue(name)
	if err != nil {
		return nil, fmt.Errorf("creating catalogue: %w", err)
	}
	s.logger.Info("catalogue created", "id", c.ID, "name", c.Name)
	return c, nil
}

func (s *Service) ListCatalogues() ([]*sqlc.Catalogue, error) {
	return s.store.ListCatalogues()
}

func (s *Service) GetCatalogue(id int64) (*sqlc.Catalogue, error) {
	c, err := s.store.FindCatalogue(id)
	if err != nil {
		return nil, fmt.Errorf("finding catalogue: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("catalogue %d: %w", id, ErrNotFound)
	}
	return c, nil
}

func (s *Service) RenameCatalogue(id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if err := s.store.RenameCatalogue(id, name); err != nil {
		return fmt.Errorf("renaming catalogue: %w", err)
	}
	s.logger.Info("catalogue renamed", "id", id, "name", name)
	return nil
}

// DeleteCatalogue deletes the catalogue and everything catalogued on its
// disks.
func (s *Service) DeleteCatalogue(id int64) error {
	if err := s.store.DeleteCatalogue(id); err != nil {
		return fmt.Errorf("deleting catalogue: %w", err)
	}
	s.logger.Info("catalogue deleted", "id", id)
	return nil
}

// Disks

func (s *Service) GetDisk(id int64) (*sqlc.Disk, error) {
	d, err := s.store.FindDisk(id)
	if err != nil {
		return nil, fmt.Errorf("finding disk: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("disk %d: %w", id, ErrNotFound)
	}
	return d, nil
}

// ListDisks returns the disks in a catalogue, or the root-level disks when
// catalogueID is not valid.
func (s *Service) ListDisks(catalogueID sql.NullInt64) ([]*sqlc.Disk, error) {
	return s.store.ListDisks(catalogueID)
}

func (s *Service) ListAllDisks() ([]*sqlc.Disk, error) {
	return s.store.ListAllDisks()
}

func (s *Service) RenameDisk(id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if err := s.store.RenameDisk(id, name); err != nil {
		return fmt.Errorf("renaming disk: %w", err)
	}
	s.logger.Info("disk renamed", "id", id, "name", name)
	return nil
}

// MoveDisk puts a disk into another catalogue, or at the root level when
// catalogueID is not valid.
func (s *Service) MoveDisk(id int64, catalogueID sql.NullInt64) error {
	if err := s.CheckCatalogue(catalogueID); err != nil {
		return err
	}
	if err := s.store.MoveDisk(id, catalogueID); err != nil {
		return fmt.Errorf("moving disk: %w", err)
	}
	s.logger.Info("disk moved", "id", id, "catalogue_id", catalogueID.Int64, "root_level", !catalogueID.Valid)
	return nil
}

// CheckCatalogue verifies that a valid catalogueID names an existing
// catalogue.
func (s *Service) CheckCatalogue(catalogueID sql.NullInt64) error {
	if !catalogueID.Valid {
		return nil
	}
	_, err := s.GetCatalogue(catalogueID.Int64)
	return err
}

// SetDiskCommands stores the shell commands used to mount and unmount the
// disk's medium. They are never executed by dcat.
func (s *Service) SetDiskCommands(id int64, mount, unmount string) error {
	if err := s.store.SetDiskCommands(id, strings.TrimSpace(mount), strings.TrimSpace(unmount)); err != nil {
		return fmt.Errorf("setting disk commands: %w", err)
	}
	return nil
}

func (s *Service) DeleteDisk(id int64) error {
	if err := s.store.DeleteDisk(id); err != nil {
		return fmt.Errorf("deleting disk: %w", err)
	}
	s.logger.Info("disk deleted", "id", id)
	return nil
}

// Browsing

// Listing is the content of one catalogued directory.
type Listing struct {
	Directory   *sqlc.Directory
	Directories []*sqlc.Directory
	Files       []*sqlc.File
}

// RootDirectory returns the root directory of a disk.
func (s *Service) RootDirectory(diskID int64) (*sqlc.Directory, error) {
	dir, err := s.store.FindRootDirectory(diskID)
	if err != nil {
		return nil, fmt.Errorf("finding root directory: %w", err)
	}
	if dir == nil {
		return nil, fmt.Errorf("root directory of disk %d: %w", diskID, ErrNotFound)
	}
	return dir, nil
}

// ListDirectory returns a directory's subdirectories followed by its files,
// each sorted by name.
func (s *Service) ListDirectory(dirID int64) (*Listing, error) {
	dir, err := s.store.FindDirectory(dirID)
	if err != nil {
		return nil, fmt.Errorf("finding directory: %w", err)
	}
	if dir == nil {
		return nil, fmt.Errorf("directory %d: %w", dirID, ErrNotFound)
	}

	dirs, err := s.store.ListChildDirectories(dirID)
	if err != nil {
		return nil, fmt.Errorf("listing subdirectories: %w", err)
	}
	files, err := s.store.ListFiles(dirID)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}

	return &Listing{Directory: dir, Directories: dirs, Files: files}, nil
}

// DirectorySummary counts the direct contents of a directory.
type DirectorySummary struct {
	Directories int64
	Files       int64
	TotalSize   int64
}

func (s *Service) DirectorySummary(dirID int64) (*DirectorySummary, error) {
	dirs, err := s.store.CountChildDirectories(dirID)
	if err != nil {
		return nil, fmt.Errorf("counting subdirectories: %w", err)
	}
	files, size, err := s.store.SummarizeFiles(dirID)
	if err != nil {
		return nil, fmt.Errorf("summarizing files: %w", err)
	}
	return &DirectorySummary{Directories: dirs, Files: files, TotalSize: size}, nil
}

// Maintenance

func (s *Service) Stats() (*Stats, error) {
	return s.store.Stats()
}

// Compact rebuilds the database file, returning freed pages to the OS.
func (s *Service) Compact() error {
	s.logger.Info("compacting database")
	if err := s.store.Compact(); err != nil {
		return fmt.Errorf("compacting database: %w", err)
	}
	return nil
}
