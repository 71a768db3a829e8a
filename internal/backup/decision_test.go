package backup

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mazrean/blobbackup/internal/storage"
)

func TestDecide(t *testing.T) {
	t.Parallel()

	index := Index{
		"p/same.txt":    {Name: "p/same.txt", Size: size(10)},
		"p/changed.txt": {Name: "p/changed.txt", Size: size(5)},
		"p/unknown.txt": {Name: "p/unknown.txt"},
		"p/empty.txt":   {Name: "p/empty.txt", Size: size(0)},
	}

	tests := []struct {
		name string
		file LocalFile
		want Action
	}{
		{
			name: "absent",
			file: LocalFile{RemoteName: "p/new.txt", Size: 10},
			want: ActionUpload,
		},
		{
			name: "same size",
			file: LocalFile{RemoteName: "p/same.txt", Size: 10},
			want: ActionSkip,
		},
		{
			name: "different size",
			file: LocalFile{RemoteName: "p/changed.txt", Size: 20},
			want: ActionReplace,
		},
		{
			name: "unknown remote size",
			file: LocalFile{RemoteName: "p/unknown.txt", Size: 20},
			want: ActionSkipUnknownSize,
		},
		{
			name: "empty file on both sides",
			file: LocalFile{RemoteName: "p/empty.txt", Size: 0},
			want: ActionSkip,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Decide(index, tt.file)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decide mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildIndex(t *testing.T) {
	t.Parallel()

	errList := storage.ErrInvalidName

	tests := []struct {
		name    string
		store   *fakeStorage
		want    Index
		wantErr error
	}{
		{
			name: "filters names outside prefix",
			store: &fakeStorage{objects: []storage.Object{
				{Name: "p/x.txt", Size: size(10)},
				{Name: "p/sub/y.txt"},
				{Name: "px.txt", Size: size(1)},
				{Name: "q/z.txt", Size: size(2)},
			}},
			want: Index{
				"p/x.txt":     {Name: "p/x.txt", Size: size(10)},
				"p/sub/y.txt": {Name: "p/sub/y.txt"},
			},
		},
		{
			name: "duplicate name",
			store: &fakeStorage{objects: []storage.Object{
				{Name: "p/x.txt", Size: size(10)},
				{Name: "p/x.txt", Size: size(11)},
			}},
			wantErr: ErrDuplicateObject,
		},
		{
			name:    "list error",
			store:   &fakeStorage{listErr: errList},
			wantErr: errList,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := BuildIndex(t.Context(), silentLogger, tt.store, "p/")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("index mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
