// Package storage defines the remote object store used by a backup run and
// its providers: Azure Blob Storage, S3-compatible stores, a local disk
// mirror, and a dry-run wrapper.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Storage is a named container of objects.
// Every operation is idempotent, retries are up to the provider's SDK.
type Storage interface {
	// List calls fn for every object whose name starts with prefix.
	List(ctx context.Context, prefix string, fn func(Object) error) error
	// DeleteIfExists removes the named object and reports whether it existed.
	DeleteIfExists(ctx context.Context, name string) (deleted bool, err error)
	// Upload stores size bytes read from r under name, in tier where the
	// provider can apply it as part of the write.
	Upload(ctx context.Context, name string, r io.Reader, size int64, tier Tier) error
	// SetTier applies the access tier to the named object.
	SetTier(ctx context.Context, name string, tier Tier) error
	// ParseTier validates a tier name for this provider and returns its canonical form.
	ParseTier(name string) (Tier, error)
	Close(ctx context.Context) error
}

// Object is a remote object as reported by a listing.
type Object struct {
	Name string
	// Size is nil when the provider does not report the content length.
	Size *int64
}

// Tier is a provider access tier name, e.g. "Cool" or "STANDARD_IA".
type Tier string

func (t Tier) String() string {
	return string(t)
}

var (
	ErrInvalidTier  = errors.New("invalid access tier")
	ErrInvalidName  = errors.New("invalid object name")
	ErrSizeMismatch = errors.New("size mismatch")
)

// matchTier returns the entry of tiers equal to name ignoring case.
func matchTier(name string, tiers []Tier) (Tier, error) {
	for _, tier := range tiers {
		if strings.EqualFold(string(tier), name) {
			return tier, nil
		}
	}

	names := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		names = append(names, string(tier))
	}

	return "", fmt.Errorf("%w: %q (expected one of %s)", ErrInvalidTier, name, strings.Join(names, ", "))
}

func sizePtr(size int64) *int64 {
	return &size
}
