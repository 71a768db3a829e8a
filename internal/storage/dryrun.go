package storage

import (
	"context"
	"io"

	"github.com/mazrean/blobbackup/log"
)

var _ Storage = (*DryRun)(nil)

// DryRun reads through to another Storage and only logs mutations.
type DryRun struct {
	logger log.Logger
	base   Storage
}

func NewDryRun(logger log.Logger, base Storage) *DryRun {
	return &DryRun{
		logger: logger,
		base:   base,
	}
}

func (d *DryRun) List(ctx context.Context, prefix string, fn func(Object) error) error {
	return d.base.List(ctx, prefix, fn)
}

func (d *DryRun) DeleteIfExists(_ context.Context, name string) (bool, error) {
	d.logger.Infof("dry run: would delete %s if it exists", name)
	return false, nil
}

func (d *DryRun) Upload(_ context.Context, name string, _ io.Reader, size int64, tier Tier) error {
	d.logger.Infof("dry run: would upload %s (%d bytes, access tier %s)", name, size, tier)
	return nil
}

func (d *DryRun) SetTier(_ context.Context, name string, tier Tier) error {
	d.logger.Infof("dry run: would set access tier of %s to %s", name, tier)
	return nil
}

func (d *DryRun) ParseTier(name string) (Tier, error) {
	return d.base.ParseTier(name)
}

func (d *DryRun) Close(ctx context.Context) error {
	return d.base.Close(ctx)
}
