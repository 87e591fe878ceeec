package backup

import (
	"context"
	"errors"
	"path"

	"go.uber.org/zap"

	"github.com/SaltaGet/Back-SIJAC/internal/storage"
)

type ImageKeySource interface {
	ImageKeys(ctx context.Context) ([]string, error)
}

// ImagesTask copies blog images that are not yet under BACKUP_PREFIX/images/.
type ImagesTask struct {
	source ImageKeySource
	store  storage.ObjectStore
	prefix string
	log    *zap.Logger
}

func NewImagesTask(
	source ImageKeySource,
	store storage.ObjectStore,
	prefix string,
	log *zap.Logger,
) *ImagesTask {
	return &ImagesTask{
		source: source,
		store:  store,
		prefix: prefix,
		log:    log,
	}
}

func (t *ImagesTask) Name() string { return "images" }

func (t *ImagesTask) Run(ctx context.Context) error {
	keys, err := t.source.ImageKeys(ctx)
	if err != nil {
		return err
	}

	var copied, missing int
	for _, key := range keys {
		if key == "" {
			continue
		}

		dst := t.prefix + "/images/" + path.Base(key)

		exists, err := t.store.Exists(ctx, dst)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if err := t.store.Copy(ctx, key, dst); err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				missing++
				t.log.Warn("image referenced but not stored", zap.String("key", key))
				continue
			}
			return err
		}
		copied++
	}

	t.log.Info("image backup finished",
		zap.Int("copied", copied),
		zap.Int("missing", missing),
	)
	return nil
}
