package storage

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	mylog "github.com/mazrean/blobbackup/internal/pkg/log"
)

func TestDryRunDoesNotMutate(t *testing.T) {
	t.Parallel()

	disk := newDiskInstance(t, t.TempDir())
	if err := disk.Upload(t.Context(), "p/x.txt", strings.NewReader("0123456789"), 10, ""); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	dryRun := NewDryRun(mylog.NewLogger(mylog.Silent), disk)

	if err := dryRun.Upload(t.Context(), "p/y.txt", strings.NewReader("y"), 1, "Cool"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	deleted, err := dryRun.DeleteIfExists(t.Context(), "p/x.txt")
	if err != nil {
		t.Fatalf("DeleteIfExists failed: %v", err)
	}
	if deleted {
		t.Error("dry run must not report deletions")
	}
	if err := dryRun.SetTier(t.Context(), "p/x.txt", "Cool"); err != nil {
		t.Fatalf("SetTier failed: %v", err)
	}

	got := map[string]int64{}
	for name, size := range listAll(t, dryRun, "p/") {
		got[name] = *size
	}
	if diff := cmp.Diff(map[string]int64{"p/x.txt": 10}, got); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
	if _, ok := disk.Tier("p/x.txt"); ok {
		t.Error("dry run must not record tiers")
	}

	tier, err := dryRun.ParseTier("Cool")
	if err != nil {
		t.Fatalf("ParseTier failed: %v", err)
	}
	if tier != "Cool" {
		t.Errorf("expected tier Cool, got %s", tier)
	}
}
