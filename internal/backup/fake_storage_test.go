package backup

import (
	"context"
	"fmt"
	"io"

	"github.com/mazrean/blobbackup/internal/storage"
)

type call struct {
	Op   string
	Name string
	Tier storage.Tier
	Data string
}

// fakeStorage records every call and fails the ones listed in failOn ("op name").
type fakeStorage struct {
	objects []storage.Object
	listErr error
	failOn  map[string]error
	calls   []call
}

func (f *fakeStorage) fail(op, name string) error {
	if err, ok := f.failOn[op+" "+name]; ok {
		return err
	}
	return nil
}

func (f *fakeStorage) List(_ context.Context, prefix string, fn func(storage.Object) error) error {
	f.calls = append(f.calls, call{Op: "list", Name: prefix})
	if f.listErr != nil {
		return f.listErr
	}

	for _, obj := range f.objects {
		if err := fn(obj); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStorage) DeleteIfExists(_ context.Context, name string) (bool, error) {
	f.calls = append(f.calls, call{Op: "delete", Name: name})
	if err := f.fail("delete", name); err != nil {
		return false, err
	}

	for _, obj := range f.objects {
		if obj.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStorage) Upload(_ context.Context, name string, r io.Reader, size int64, tier storage.Tier) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected=%d, actual=%d", size, len(data))
	}

	f.calls = append(f.calls, call{Op: "upload", Name: name, Tier: tier, Data: string(data)})
	return f.fail("upload", name)
}

func (f *fakeStorage) SetTier(_ context.Context, name string, tier storage.Tier) error {
	f.calls = append(f.calls, call{Op: "tier", Name: name, Tier: tier})
	return f.fail("tier", name)
}

func (f *fakeStorage) ParseTier(name string) (storage.Tier, error) {
	return storage.Tier(name), nil
}

func (f *fakeStorage) Close(context.Context) error {
	return nil
}

func size(n int64) *int64 {
	return &n
}
