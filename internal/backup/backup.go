// Package backup mirrors a local directory into a storage container.
//
// A run lists the objects under the target prefix once, walks the source
// directory, and for every file uploads it when it is missing remotely or its
// size differs, then applies the configured access tier. Files are processed
// one at a time and the first storage error ends the run.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	myio "github.com/mazrean/blobbackup/internal/pkg/io"
	"github.com/mazrean/blobbackup/internal/storage"
	"github.com/mazrean/blobbackup/log"
)

type Backup struct {
	logger log.Logger
	store  storage.Storage
	tier   storage.Tier
}

// New creates a Backup applying tier to every object it touches.
// tier should come from store.ParseTier.
func New(logger log.Logger, store storage.Storage, tier storage.Tier) *Backup {
	return &Backup{
		logger: logger,
		store:  store,
		tier:   tier,
	}
}

// Summary counts what a run did.
type Summary struct {
	Checked            int
	Uploaded           int
	Replaced           int
	Skipped            int
	SkippedUnknownSize int
	TiersSet           int
	BytesUploaded      int64
	Duration           time.Duration
}

// Run mirrors sourceDir into blobDir. The returned summary covers the files
// processed before an error, if any.
func (b *Backup) Run(ctx context.Context, sourceDir, blobDir string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}
	defer func() {
		summary.Duration = time.Since(start)
	}()

	prefix := NormalizePrefix(blobDir)

	index, err := BuildIndex(ctx, b.logger, b.store, prefix)
	if err != nil {
		return summary, err
	}

	files, err := ScanLocal(b.logger, sourceDir, prefix)
	if err != nil {
		return summary, err
	}
	b.logger.Debugf("%d local files found in %s", len(files), sourceDir)

	for _, file := range files {
		if err := b.syncFile(ctx, index, file, summary); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

func (b *Backup) syncFile(ctx context.Context, index Index, file LocalFile, summary *Summary) error {
	action := Decide(index, file)
	b.logger.Debugf("checking %s: %s", file.RemoteName, action)

	summary.Checked++
	switch action {
	case ActionUpload, ActionReplace:
		if err := b.upload(ctx, file, summary); err != nil {
			return err
		}
		if action == ActionReplace {
			summary.Replaced++
		} else {
			summary.Uploaded++
		}
	case ActionSkip:
		summary.Skipped++
	case ActionSkipUnknownSize:
		summary.SkippedUnknownSize++
	}

	if err := b.store.SetTier(ctx, file.RemoteName, b.tier); err != nil {
		return fmt.Errorf("set access tier of %s: %w", file.RemoteName, err)
	}
	summary.TiersSet++
	b.logger.Debugf("access tier of %s set to %s", file.RemoteName, b.tier)

	return nil
}

func (b *Backup) upload(ctx context.Context, file LocalFile, summary *Summary) (err error) {
	deleted, err := b.store.DeleteIfExists(ctx, file.RemoteName)
	if err != nil {
		return fmt.Errorf("delete %s: %w", file.RemoteName, err)
	}
	if deleted {
		b.logger.Debugf("deleted existing %s", file.RemoteName)
	}

	b.logger.Infof("uploading %s", file.RemoteName)

	f, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("open local file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close local file: %w", closeErr))
		}
	}()

	r := myio.NewCountingReader(f)
	if err := b.store.Upload(ctx, file.RemoteName, r, file.Size, b.tier); err != nil {
		return fmt.Errorf("upload %s: %w", file.RemoteName, err)
	}
	summary.BytesUploaded += r.Count()
	b.logger.Debugf("uploaded %s (%d bytes)", file.RemoteName, r.Count())

	return nil
}
