package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mazrean/blobbackup/internal/pkg/json"
	"github.com/mazrean/blobbackup/log"
)

// Layout below the root: objects/<name>, tmp/ for partial writes and
// tiers.json for the tier index. Object names never reach tmp/ or the index.
const (
	objectsDirName    = "objects"
	tempDirName       = "tmp"
	tierIndexFileName = "tiers.json"
	tempFilePattern   = "upload-*"
)

var _ Storage = &Disk{}

// Disk mirrors objects into a local directory. Object names map to
// slash-separated paths below objects/, tiers are kept in an index file.
type Disk struct {
	logger     log.Logger
	rootPath   string
	objectsDir string
	tempDir    string

	tiersLocker sync.RWMutex
	tiers       map[string]Tier
}

func NewDisk(logger log.Logger, dir string) (*Disk, error) {
	objectsDir := filepath.Join(dir, objectsDirName)
	if err := os.MkdirAll(objectsDir, 0755); err != nil {
		return nil, fmt.Errorf("create objects directory: %w", err)
	}
	tempDir := filepath.Join(dir, tempDirName)
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}

	tiers, err := readTierIndex(filepath.Join(dir, tierIndexFileName))
	if err != nil {
		return nil, err
	}

	logger.Infof("disk storage initialized at %s", dir)

	return &Disk{
		logger:     logger,
		rootPath:   dir,
		objectsDir: objectsDir,
		tempDir:    tempDir,
		tiers:      tiers,
	}, nil
}

func readTierIndex(indexPath string) (map[string]Tier, error) {
	f, err := os.Open(indexPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]Tier{}, nil
		}
		return nil, fmt.Errorf("open tier index: %w", err)
	}
	defer f.Close()

	tiers := map[string]Tier{}
	if err := json.NewDecoder(f).Decode(&tiers); err != nil {
		return nil, fmt.Errorf("decode tier index: %w", err)
	}

	return tiers, nil
}

func (d *Disk) List(_ context.Context, prefix string, fn func(Object) error) error {
	err := filepath.WalkDir(d.objectsDir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(d.objectsDir, p)
		if err != nil {
			return fmt.Errorf("relative path: %w", err)
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", name, err)
		}

		return fn(Object{Name: name, Size: sizePtr(info.Size())})
	})
	if err != nil {
		return fmt.Errorf("walk root directory: %w", err)
	}

	return nil
}

func (d *Disk) DeleteIfExists(_ context.Context, name string) (bool, error) {
	objectPath, err := d.objectFilePath(name)
	if err != nil {
		return false, err
	}

	if err := os.Remove(objectPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove object file: %w", err)
	}

	d.tiersLocker.Lock()
	defer d.tiersLocker.Unlock()

	if _, ok := d.tiers[name]; ok {
		delete(d.tiers, name)
		if err := d.writeTierIndex(); err != nil {
			return true, err
		}
	}

	return true, nil
}

func (d *Disk) Upload(_ context.Context, name string, r io.Reader, size int64, tier Tier) (err error) {
	objectPath, err := d.objectFilePath(name)
	if err != nil {
		return err
	}

	dir := filepath.Dir(objectPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	f, err := os.CreateTemp(d.tempDir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := f.Name()
	defer func() {
		if err != nil {
			if removeErr := os.Remove(tempPath); removeErr != nil && !errors.Is(removeErr, fs.ErrNotExist) {
				err = errors.Join(err, fmt.Errorf("remove temp file: %w", removeErr))
			}
		}
	}()

	n, err := io.Copy(f, r)
	if closeErr := f.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close temp file: %w", closeErr))
	}
	if err != nil {
		return fmt.Errorf("write object file: %w", err)
	}
	if n != size {
		return fmt.Errorf("%w: expected=%d, actual=%d", ErrSizeMismatch, size, n)
	}

	if err := os.Rename(tempPath, objectPath); err != nil {
		return fmt.Errorf("rename object file: %w", err)
	}

	return d.recordTier(name, tier)
}

func (d *Disk) SetTier(_ context.Context, name string, tier Tier) error {
	objectPath, err := d.objectFilePath(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(objectPath); err != nil {
		return fmt.Errorf("stat object file: %w", err)
	}

	return d.recordTier(name, tier)
}

// recordTier stores tier for name. An empty tier drops the entry.
func (d *Disk) recordTier(name string, tier Tier) error {
	d.tiersLocker.Lock()
	defer d.tiersLocker.Unlock()

	current, ok := d.tiers[name]
	switch {
	case tier == "" && !ok:
		return nil
	case tier == "":
		delete(d.tiers, name)
	case ok && current == tier:
		return nil
	default:
		d.tiers[name] = tier
	}

	return d.writeTierIndex()
}

// Tier returns the tier recorded for name.
func (d *Disk) Tier(name string) (Tier, bool) {
	d.tiersLocker.RLock()
	defer d.tiersLocker.RUnlock()

	tier, ok := d.tiers[name]
	return tier, ok
}

func (d *Disk) ParseTier(name string) (Tier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidTier)
	}

	return Tier(name), nil
}

func (d *Disk) Close(context.Context) error {
	return nil
}

// writeTierIndex must be called with tiersLocker held.
func (d *Disk) writeTierIndex() (err error) {
	f, err := os.CreateTemp(d.tempDir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create tier index: %w", err)
	}
	tempPath := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tempPath)
		}
	}()

	err = json.NewEncoder(f).Encode(d.tiers)
	if closeErr := f.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close tier index: %w", closeErr))
	}
	if err != nil {
		return fmt.Errorf("write tier index: %w", err)
	}

	if err := os.Rename(tempPath, filepath.Join(d.rootPath, tierIndexFileName)); err != nil {
		return fmt.Errorf("rename tier index: %w", err)
	}

	return nil
}

func (d *Disk) objectFilePath(name string) (string, error) {
	if name == "" || name == "." || strings.HasPrefix(name, "/") ||
		path.Clean(name) != name || name == ".." || strings.HasPrefix(name, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	return filepath.Join(d.objectsDir, filepath.FromSlash(name)), nil
}
