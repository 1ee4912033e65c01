package catalog_test

import (
	"path/filepath"
	"testing"

	"dcat-go/internal/catalog"
)

func searchHarness(t *testing.T) (*harness, *catalog.Result) {
	t.Helper()
	h := newHarness(t)
	h.fs.AddDirectory("/vol/Photos")
	h.fs.AddFile("/vol/Photos/holiday_2023.JPG", 300)
	h.fs.AddFile("/vol/Photos/holiday-2024.jpg", 400)
	h.fs.AddFile("/vol/Photos/100%.png", 1)
	h.fs.AddDirectory("/vol/b/photos-old")
	res := h.run(t, catalog.Request{Path: "/vol", DiskName: "Backup"})
	return h, res
}

func TestSearch(t *testing.T) {
	h, res := searchHarness(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"case insensitive, directories first", "PHOTO", []string{"/Photos", "/b/photos-old"}},
		{"files with full path", "holiday", []string{"/Photos/holiday-2024.jpg", "/Photos/holiday_2023.JPG"}},
		{"underscore is literal", "y_2", []string{"/Photos/holiday_2023.JPG"}},
		{"percent is literal", "0%", []string{"/Photos/100%.png"}},
		{"no match", "nothing-here", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, err := h.svc.Search(tt.text, 0)
			if err != nil {
				t.Fatalf("Search(%q) error = %v", tt.text, err)
			}
			var got []string
			for _, hit := range hits {
				got = append(got, hit.Path)
				if hit.DiskID != res.DiskID || hit.DiskName != "Backup" {
					t.Errorf("hit %s disk = %d/%q", hit.Path, hit.DiskID, hit.DiskName)
				}
				if hit.FullPath != filepath.Join("/vol", hit.Path) {
					t.Errorf("FullPath = %q for %q", hit.FullPath, hit.Path)
				}
			}
			if join(got) != join(tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSearch_KindsAndSizes(t *testing.T) {
	h, _ := searchHarness(t)
	hits, err := h.svc.Search("photos", 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, hit := range hits {
		if hit.Kind != catalog.KindDirectory || hit.Size != 0 {
			t.Errorf("hit %s = kind %v size %d, want directory", hit.Path, hit.Kind, hit.Size)
		}
	}

	hits, err = h.svc.Search("2024", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Kind != catalog.KindFile || hits[0].Size != 400 {
		t.Errorf("Search(2024) = %+v", hits)
	}
}

func TestSearch_Limit(t *testing.T) {
	h, _ := searchHarness(t)

	hits, err := h.svc.Search("o", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 {
		t.Fatalf("Search() returned %d hits, want 2", len(hits))
	}
	for _, hit := range hits {
		if hit.Kind != catalog.KindDirectory {
			t.Errorf("hit %s is %v, want directories to fill the limit first", hit.Path, hit.Kind)
		}
	}

	hits, err = h.svc.Search("o", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 3 || hits[2].Kind == catalog.KindDirectory {
		t.Errorf("third hit should be a file: %+v", hits)
	}
}

func TestSearch_EmptyText(t *testing.T) {
	h := newHarness(t)
	if _, err := h.svc.Search("  ", 10); err == nil {
		t.Error("Search(blank) succeeded")
	}
}

func TestSearch_AcrossDisks(t *testing.T) {
	h := newHarness(t)
	h.run(t, catalog.Request{Path: "/vol", DiskName: "first"})
	h.run(t, catalog.Request{Path: "/vol", DiskName: "second"})

	hits, err := h.svc.Search("x.txt", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 2 || hits[0].DiskID == hits[1].DiskID {
		t.Errorf("Search() = %+v, want one hit per disk", hits)
	}
}
