package storage

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	mylog "github.com/mazrean/blobbackup/internal/pkg/log"
)

func newAzureInstance(t *testing.T) *Azure {
	t.Helper()

	if azuriteConnectionString == "" {
		t.Skip("Azurite is not running")
	}

	azure, err := NewAzure(mylog.NewLogger(mylog.Silent), azuriteConnectionString, testContainer)
	if err != nil {
		t.Fatalf("Failed to create Azure instance: %v", err)
	}
	return azure
}

func listAll(t *testing.T, s Storage, prefix string) map[string]*int64 {
	t.Helper()

	objects := map[string]*int64{}
	err := s.List(t.Context(), prefix, func(obj Object) error {
		objects[obj.Name] = obj.Size
		return nil
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	return objects
}

func TestAzureRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "normal data",
			data: []byte("test upload method"),
		},
		{
			name: "empty data",
			data: []byte{},
		},
		{
			name: "large data",
			data: bytes.Repeat([]byte("a"), 1024*1024*10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			azure := newAzureInstance(t)
			prefix := strings.ReplaceAll(t.Name(), " ", "_") + "/"
			name := prefix + "dir/file.bin"

			if err := azure.Upload(t.Context(), name, bytes.NewReader(tt.data), int64(len(tt.data)), "Hot"); err != nil {
				t.Fatalf("Upload failed: %v", err)
			}

			objects := listAll(t, azure, prefix)
			size, ok := objects[name]
			if !ok {
				t.Fatalf("uploaded blob %s not listed: %v", name, objects)
			}
			if size == nil {
				t.Fatal("listed blob has no content length")
			}
			if diff := cmp.Diff(int64(len(tt.data)), *size); diff != "" {
				t.Errorf("size mismatch (-want +got):\n%s", diff)
			}

			if err := azure.SetTier(t.Context(), name, "Cool"); err != nil {
				t.Fatalf("SetTier failed: %v", err)
			}
			props, err := azure.client.NewBlobClient(name).GetProperties(t.Context(), nil)
			if err != nil {
				t.Fatalf("GetProperties failed: %v", err)
			}
			if props.AccessTier == nil || *props.AccessTier != "Cool" {
				t.Errorf("expected access tier Cool, got %v", props.AccessTier)
			}

			deleted, err := azure.DeleteIfExists(t.Context(), name)
			if err != nil {
				t.Fatalf("DeleteIfExists failed: %v", err)
			}
			if !deleted {
				t.Error("expected existing blob to be deleted")
			}

			deleted, err = azure.DeleteIfExists(t.Context(), name)
			if err != nil {
				t.Fatalf("second DeleteIfExists failed: %v", err)
			}
			if deleted {
				t.Error("expected missing blob not to be reported as deleted")
			}

			if objects := listAll(t, azure, prefix); len(objects) != 0 {
				t.Errorf("expected no blobs after delete, got %v", objects)
			}
		})
	}
}

func TestAzureListPrefix(t *testing.T) {
	t.Parallel()

	azure := newAzureInstance(t)
	for _, name := range []string{"listprefix/a.txt", "listprefix/b/c.txt", "listprefix-other/d.txt"} {
		if err := azure.Upload(t.Context(), name, strings.NewReader(name), int64(len(name)), ""); err != nil {
			t.Fatalf("Upload %s failed: %v", name, err)
		}
	}

	got := map[string]int64{}
	for name, size := range listAll(t, azure, "listprefix/") {
		got[name] = *size
	}

	want := map[string]int64{
		"listprefix/a.txt":   int64(len("listprefix/a.txt")),
		"listprefix/b/c.txt": int64(len("listprefix/b/c.txt")),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestAzureParseTier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Tier
		wantErr error
	}{
		{name: "canonical", input: "Hot", want: "Hot"},
		{name: "lower case", input: "cool", want: "Cool"},
		{name: "cold", input: "COLD", want: "Cold"},
		{name: "archive", input: "Archive", want: "Archive"},
		{name: "unknown", input: "Frozen", wantErr: ErrInvalidTier},
		{name: "empty", input: "", wantErr: ErrInvalidTier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := (&Azure{}).ParseTier(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tier mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
