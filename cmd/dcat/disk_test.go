package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"dcat-go/internal/catalog"
	"dcat-go/internal/database/sqlc"
)

func TestWriteScanReport(t *testing.T) {
	denied := []string{"/media/private", "/media/lost+found"}
	failure := &catalog.CatalogError{Step: catalog.StepInsertFile, Err: errors.New("disk I/O error")}
	cancelled := &catalog.CatalogError{Step: catalog.StepCancelled, Err: context.Canceled}

	tests := []struct {
		name    string
		res     *catalog.Result
		err     error
		want    []string
		notWant []string
	}{
		{
			name: "committed",
			res:  &catalog.Result{DiskID: 3, Objects: 1234, State: catalog.StateCommitted, Disk: &sqlc.Disk{ID: 3, Name: "USB 1"}},
			want: []string{"Catalogued 1,234 objects into disk #3 (USB 1)"},
		},
		{
			name: "committed with unreadable directories",
			res:  &catalog.Result{DiskID: 3, Objects: 7, AccessDenied: denied, State: catalog.StateCommitted},
			want: []string{"Catalogued 7 objects into disk #3", "2 directories could not be read:", "  /media/private", "  /media/lost+found"},
		},
		{
			name:    "failed after unreadable directories",
			res:     &catalog.Result{DiskID: 3, Objects: 7, AccessDenied: denied, State: catalog.StateFailed},
			err:     failure,
			want:    []string{"2 directories could not be read:", "  /media/private", "  /media/lost+found"},
			notWant: []string{"Catalogued", "Cancelled"},
		},
		{
			name:    "cancelled",
			res:     &catalog.Result{Objects: 2, AccessDenied: denied[:1], State: catalog.StateFailed},
			err:     cancelled,
			want:    []string{"Cancelled; nothing was recorded.", "1 directories could not be read:", "  /media/private"},
			notWant: []string{"Catalogued"},
		},
		{
			name:    "failed without a result",
			err:     failure,
			notWant: []string{"Catalogued", "could not be read"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeScanReport(&buf, tt.res, tt.err)
			if err != tt.err {
				t.Errorf("writeScanReport() error = %v, want %v", err, tt.err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w+"\n") {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}
}
