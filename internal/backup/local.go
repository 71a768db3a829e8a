package backup

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mazrean/blobbackup/log"
)

// LocalFile is a file below the source directory and the object name it maps to.
type LocalFile struct {
	Path       string
	RemoteName string
	Size       int64
}

// ScanLocal collects every file below sourceDir in lexical order.
// Symlinks are followed when they point at a regular file.
func ScanLocal(logger log.Logger, sourceDir, prefix string) ([]LocalFile, error) {
	root, err := filepath.EvalSymlinks(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("walk source directory: %w", err)
	}

	var files []LocalFile
	err = filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}

		var info fs.FileInfo
		switch {
		case entry.Type().IsRegular():
			info, err = entry.Info()
		case entry.Type()&fs.ModeSymlink != 0:
			info, err = os.Stat(p)
			if err != nil {
				logger.Warnf("skipping broken symlink %s: %v", p, err)
				return nil
			}
		default:
			logger.Debugf("skipping non-regular file %s", p)
			return nil
		}
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.Mode().IsRegular() {
			logger.Debugf("skipping %s: not a regular file", p)
			return nil
		}

		remoteName, err := RemoteName(root, p, prefix)
		if err != nil {
			return err
		}

		files = append(files, LocalFile{
			Path:       p,
			RemoteName: remoteName,
			Size:       info.Size(),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source directory: %w", err)
	}

	return files, nil
}
