package backup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mazrean/blobbackup/internal/storage"
	"github.com/mazrean/blobbackup/log"
)

const indexProgressInterval = 1000

var ErrDuplicateObject = errors.New("duplicate object name in listing")

// Index maps remote object names to the listed objects.
type Index map[string]storage.Object

// BuildIndex lists every object under prefix.
func BuildIndex(ctx context.Context, logger log.Logger, store storage.Storage, prefix string) (Index, error) {
	logger.Debugf("loading existing objects under %q", prefix)

	index := Index{}
	err := store.List(ctx, prefix, func(obj storage.Object) error {
		if !strings.HasPrefix(obj.Name, prefix) {
			return nil
		}
		if _, ok := index[obj.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateObject, obj.Name)
		}

		index[obj.Name] = obj
		if len(index)%indexProgressInterval == 0 {
			logger.Debugf("loading existing objects (%d done)", len(index))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	logger.Debugf("%d objects loaded", len(index))

	return index, nil
}
