package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dcat-go/internal/catalog"
)

func TestDataSourceName(t *testing.T) {
	t.Run("file database uses WAL and foreign keys", func(t *testing.T) {
		dsn := DataSourceName("/var/lib/dcat/catalog.db")
		if !strings.HasPrefix(dsn, "file:/var/lib/dcat/catalog.db?") {
			t.Errorf("DataSourceName() = %q", dsn)
		}
		for _, want := range []string{"_foreign_keys=on", "_journal_mode=WAL", "_busy_timeout=5000"} {
			if !strings.Contains(dsn, want) {
				t.Errorf("DataSourceName() = %q, missing %s", dsn, want)
			}
		}
	})

	t.Run("special characters are escaped", func(t *testing.T) {
		dsn := DataSourceName("/tmp/what?#100%.db")
		if !strings.HasPrefix(dsn, "file:/tmp/what%3f%23100%25.db?") {
			t.Errorf("DataSourceName() = %q", dsn)
		}
	})

	t.Run("memory databases are shared and distinct", func(t *testing.T) {
		a := DataSourceName(MemoryPath)
		b := DataSourceName(MemoryPath)
		if a == b {
			t.Errorf("two memory DSNs are equal: %q", a)
		}
		if !strings.HasPrefix(a, "file:/dcat-") || !strings.Contains(a, "vfs=memdb") {
			t.Errorf("DataSourceName(memory) = %q", a)
		}
		if strings.Contains(a, "cache=shared") {
			t.Errorf("DataSourceName(memory) = %q, uses shared cache", a)
		}
	})
}

func TestSQLiteStore_Catalogues(t *testing.T) {
	t.Run("create, find and list", func(t *testing.T) {
		store := newTestStore(t)

		b, err := store.CreateCatalogue("Backups")
		if err != nil {
			t.Fatalf("CreateCatalogue() error = %v", err)
		}
		if _, err := store.CreateCatalogue("archive"); err != nil {
			t.Fatalf("CreateCatalogue() error = %v", err)
		}

		found, err := store.FindCatalogue(b.ID)
		if err != nil || found == nil || found.Name != "Backups" {
			t.Errorf("FindCatalogue() = %v, %v", found, err)
		}

		list, err := store.ListCatalogues()
		if err != nil {
			t.Fatalf("ListCatalogues() error = %v", err)
		}
		if len(list) != 2 || list[0].Name != "archive" || list[1].Name != "Backups" {
			t.Errorf("ListCatalogues() not sorted case-insensitively: %v", list)
		}
	})

	t.Run("find missing returns nil", func(t *testing.T) {
		store := newTestStore(t)

		found, err := store.FindCatalogue(42)
		if err != nil || found != nil {
			t.Errorf("FindCatalogue() = %v, %v, want nil, nil", found, err)
		}
	})

	t.Run("rename missing is not found", func(t *testing.T) {
		store := newTestStore(t)

		err := store.RenameCatalogue(42, "x")
		if !errors.Is(err, catalog.ErrNotFound) {
			t.Errorf("RenameCatalogue() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore_DeleteCatalogueCascades(t *testing.T) {
	store := newTestStore(t)

	keep, _ := store.CreateCatalogue("keep")
	drop, _ := store.CreateCatalogue("drop")
	kept := loadDisk(t, store, "kept", sql.NullInt64{Int64: keep.ID, Valid: true})
	loadDisk(t, store, "dropped-1", sql.NullInt64{Int64: drop.ID, Valid: true})
	loadDisk(t, store, "dropped-2", sql.NullInt64{Int64: drop.ID, Valid: true})
	loose := loadDisk(t, store, "loose", sql.NullInt64{})

	if err := store.DeleteCatalogue(drop.ID); err != nil {
		t.Fatalf("DeleteCatalogue() error = %v", err)
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Catalogues != 1 || stats.Disks != 2 || stats.Directories != 4 || stats.Files != 4 {
		t.Errorf("stats after delete = %+v", stats)
	}
	for _, id := range []int64{kept.diskID, loose.diskID} {
		if d, _ := store.FindDisk(id); d == nil {
			t.Errorf("disk %d was deleted", id)
		}
	}

	if err := store.DeleteCatalogue(drop.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("second DeleteCatalogue() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_Disks(t *testing.T) {
	t.Run("list by catalogue and root level", func(t *testing.T) {
		store := newTestStore(t)
		c, _ := store.CreateCatalogue("c")
		cid := sql.NullInt64{Int64: c.ID, Valid: true}
		loadDisk(t, store, "in-catalogue", cid)
		loadDisk(t, store, "loose", sql.NullInt64{})

		inCat, err := store.ListDisks(cid)
		if err != nil {
			t.Fatalf("ListDisks() error = %v", err)
		}
		if len(inCat) != 1 || inCat[0].Name != "in-catalogue" {
			t.Errorf("ListDisks(catalogue) = %v", inCat)
		}

		rootLevel, err := store.ListDisks(sql.NullInt64{})
		if err != nil {
			t.Fatalf("ListDisks() error = %v", err)
		}
		if len(rootLevel) != 1 || rootLevel[0].Name != "loose" {
			t.Errorf("ListDisks(root level) = %v", rootLevel)
		}

		all, err := store.ListAllDisks()
		if err != nil || len(all) != 2 {
			t.Errorf("ListAllDisks() = %d disks, %v", len(all), err)
		}
	})

	t.Run("rename, move and commands", func(t *testing.T) {
		store := newTestStore(t)
		c, _ := store.CreateCatalogue("c")
		fx := loadDisk(t, store, "old", sql.NullInt64{})

		if err := store.RenameDisk(fx.diskID, "new"); err != nil {
			t.Fatalf("RenameDisk() error = %v", err)
		}
		if err := store.MoveDisk(fx.diskID, sql.NullInt64{Int64: c.ID, Valid: true}); err != nil {
			t.Fatalf("MoveDisk() error = %v", err)
		}
		if err := store.SetDiskCommands(fx.diskID, "mount /mnt/cd", "umount /mnt/cd"); err != nil {
			t.Fatalf("SetDiskCommands() error = %v", err)
		}

		d, err := store.FindDisk(fx.diskID)
		if err != nil || d == nil {
			t.Fatalf("FindDisk() = %v, %v", d, err)
		}
		if d.Name != "new" || d.CatalogueID.Int64 != c.ID || !d.CatalogueID.Valid {
			t.Errorf("disk = %+v", d)
		}
		if d.MountCommand != "mount /mnt/cd" || d.UnmountCommand != "umount /mnt/cd" {
			t.Errorf("commands = %q / %q", d.MountCommand, d.UnmountCommand)
		}

		if err := store.MoveDisk(fx.diskID, sql.NullInt64{}); err != nil {
			t.Fatalf("MoveDisk(root level) error = %v", err)
		}
		d, _ = store.FindDisk(fx.diskID)
		if d.CatalogueID.Valid {
			t.Errorf("CatalogueID = %v after moving to root level", d.CatalogueID)
		}
	})

	t.Run("moving into a missing catalogue fails", func(t *testing.T) {
		store := newTestStore(t)
		fx := loadDisk(t, store, "d", sql.NullInt64{})

		if err := store.MoveDisk(fx.diskID, sql.NullInt64{Int64: 999, Valid: true}); err == nil {
			t.Error("MoveDisk() into missing catalogue expected foreign key error")
		}
	})

	t.Run("delete cascades to contents only", func(t *testing.T) {
		store := newTestStore(t)
		a := loadDisk(t, store, "a", sql.NullInt64{})
		b := loadDisk(t, store, "b", sql.NullInt64{})

		if err := store.DeleteDisk(a.diskID); err != nil {
			t.Fatalf("DeleteDisk() error = %v", err)
		}

		if d, _ := store.FindDirectory(a.rootID); d != nil {
			t.Error("root directory of deleted disk still present")
		}
		if d, _ := store.FindDirectory(b.subID); d == nil {
			t.Error("directory of other disk was deleted")
		}
		stats, _ := store.Stats()
		if stats.Disks != 1 || stats.Directories != 2 || stats.Files != 2 {
			t.Errorf("stats = %+v", stats)
		}

		if err := store.DeleteDisk(a.diskID); !errors.Is(err, catalog.ErrNotFound) {
			t.Errorf("second DeleteDisk() error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore_Browse(t *testing.T) {
	store := newTestStore(t)
	fx := loadDisk(t, store, "d", sql.NullInt64{})

	dirs, err := store.ListChildDirectories(fx.rootID)
	if err != nil || len(dirs) != 1 || dirs[0].ID != fx.subID {
		t.Errorf("ListChildDirectories() = %v, %v", dirs, err)
	}

	n, err := store.CountChildDirectories(fx.rootID)
	if err != nil || n != 1 {
		t.Errorf("CountChildDirectories() = %d, %v", n, err)
	}

	count, size, err := store.SummarizeFiles(fx.subID)
	if err != nil || count != 1 || size != 32 {
		t.Errorf("SummarizeFiles() = %d, %d, %v, want 1, 32", count, size, err)
	}

	count, size, err = store.SummarizeFiles(9999)
	if err != nil || count != 0 || size != 0 {
		t.Errorf("SummarizeFiles(missing) = %d, %d, %v", count, size, err)
	}
}

func TestSQLiteStore_Search(t *testing.T) {
	store := newTestStore(t)
	loadDisk(t, store, "d", sql.NullInt64{})

	dirs, err := store.SearchDirectories("%SU%", 10)
	if err != nil || len(dirs) != 1 || dirs[0].Name.String != "sub" {
		t.Errorf("SearchDirectories() = %v, %v", dirs, err)
	}

	files, err := store.SearchFiles("%.TXT", 10)
	if err != nil || len(files) != 2 {
		t.Errorf("SearchFiles() = %d files, %v, want 2", len(files), err)
	}

	files, err = store.SearchFiles("%.TXT", 1)
	if err != nil || len(files) != 1 {
		t.Errorf("SearchFiles(limit 1) = %d files, %v", len(files), err)
	}

	files, err = store.SearchFiles(`%\_%`, 10)
	if err != nil || len(files) != 0 {
		t.Errorf("SearchFiles(escaped underscore) = %d files, %v, want 0", len(files), err)
	}
}

func TestSQLiteStore_StatsAndCompact(t *testing.T) {
	store := newTestStore(t)
	loadDisk(t, store, "d", sql.NullInt64{})

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalBytes != 42 {
		t.Errorf("TotalBytes = %d, want 42", stats.TotalBytes)
	}
	if stats.DatabaseBytes == 0 {
		t.Error("DatabaseBytes = 0")
	}

	if err := store.Compact(); err != nil {
		t.Errorf("Compact() error = %v", err)
	}
}

func TestSQLiteStore_Operations(t *testing.T) {
	store := newTestStore(t)

	if id, err := store.MaxOperationID(); err != nil || id != 0 {
		t.Errorf("MaxOperationID() on empty db = %d, %v", id, err)
	}

	first, err := store.CreateOperation("disk add", `["/mnt/cd","cd1"]`)
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}
	if first.Status != "running" {
		t.Errorf("Status = %q, want running", first.Status)
	}
	second, _ := store.CreateOperation("catalogue create", `["x"]`)

	if err := store.FinishOperation(first.ID, "success"); err != nil {
		t.Fatalf("FinishOperation() error = %v", err)
	}

	ops, err := store.ListOperations(10)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 2 || ops[0].ID != second.ID {
		t.Fatalf("ListOperations() = %v, want newest first", ops)
	}
	if ops[1].Status != "success" || !ops[1].FinishedAt.Valid {
		t.Errorf("finished op = %+v", ops[1])
	}

	if id, _ := store.MaxOperationID(); id != second.ID {
		t.Errorf("MaxOperationID() = %d, want %d", id, second.ID)
	}
}

func TestSQLiteStore_BackupTo(t *testing.T) {
	store := newTestStore(t)
	fx := loadDisk(t, store, "d", sql.NullInt64{})

	dest := filepath.Join(t.TempDir(), "copy.db")
	if err := store.BackupTo(dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}

	copyStore, err := NewSQLiteStore(dest)
	if err != nil {
		t.Fatalf("opening backup: %v", err)
	}
	defer copyStore.Close()

	if err := copyStore.CheckMigrations(); err != nil {
		t.Errorf("backup CheckMigrations() error = %v", err)
	}
	if d, err := copyStore.FindDisk(fx.diskID); err != nil || d == nil {
		t.Errorf("backup FindDisk() = %v, %v", d, err)
	}
}

func TestSQLiteStore_MemoryWriterSharesData(t *testing.T) {
	store, err := NewSQLiteStore(MemoryPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	fx := loadDisk(t, store, "mem", sql.NullInt64{})

	if d, err := store.FindDisk(fx.diskID); err != nil || d == nil {
		t.Errorf("FindDisk() after writer commit = %v, %v", d, err)
	}
	if store.Path() != MemoryPath {
		t.Errorf("Path() = %q, want %q", store.Path(), MemoryPath)
	}

	dir := store.tempDir
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temporary database directory %q still present after Close: %v", dir, err)
	}
}

func TestSQLiteStore_ReadsDuringWrite(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "catalog.db") }},
		{"memory", func(t *testing.T) string { return MemoryPath }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewSQLiteStore(tt.path(t))
			if err != nil {
				t.Fatalf("NewSQLiteStore() error = %v", err)
			}
			t.Cleanup(func() { store.Close() })
			if err := store.Migrate(); err != nil {
				t.Fatalf("Migrate() error = %v", err)
			}
			loadDisk(t, store, "first", sql.NullInt64{})

			ctx := context.Background()
			w := openWriter(t, store)
			if err := w.DropIndexes(ctx); err != nil {
				t.Fatalf("DropIndexes() error = %v", err)
			}
			diskID, err := w.CreateDisk(ctx, &catalog.DiskAttrs{Name: "second", ScanPath: "/scan", ScannedAt: testTime})
			if err != nil {
				t.Fatalf("CreateDisk() error = %v", err)
			}
			if _, err := w.InsertDirectory(ctx, diskID, sql.NullInt64{}, dirEntry("scan"), catalog.DirStatus{}); err != nil {
				t.Fatalf("InsertDirectory() error = %v", err)
			}

			disks, err := store.ListAllDisks()
			if err != nil {
				t.Fatalf("ListAllDisks() during write error = %v", err)
			}
			if len(disks) != 1 || disks[0].Name != "first" {
				t.Errorf("ListAllDisks() during write = %d disks, want only the committed one", len(disks))
			}
			files, err := store.SearchFiles("%b.txt%", 10)
			if err != nil {
				t.Fatalf("SearchFiles() during write error = %v", err)
			}
			if len(files) != 1 {
				t.Errorf("SearchFiles() during write = %d files, want 1", len(files))
			}

			if err := w.RebuildIndexes(ctx); err != nil {
				t.Fatalf("RebuildIndexes() error = %v", err)
			}
			if err := w.Commit(); err != nil {
				t.Fatalf("Commit() error = %v", err)
			}
			if disks, err := store.ListAllDisks(); err != nil || len(disks) != 2 {
				t.Errorf("ListAllDisks() after commit = %d disks, %v", len(disks), err)
			}
		})
	}
}
