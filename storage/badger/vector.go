package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/soundbite/core"
	"github.com/poiesic/soundbite/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
type VectorRepository struct {
	backend *Backend
	owned   bool
	logger  *slog.Logger
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// newVectorRepository is an internal constructor that returns the concrete type.
func newVectorRepository(backend *Backend, owned bool) *VectorRepository {
	return &VectorRepository{
		backend: backend,
		owned:   owned,
		logger:  slog.Default().With("component", "vector-repository"),
	}
}

// NewVectorRepository creates a repository on an already opened backend.
// Closing the repository leaves the backend open.
func NewVectorRepository(backend *Backend) (storage.VectorRepository, error) {
	if backend == nil {
		return nil, errors.New("badger: backend is required")
	}
	return newVectorRepository(backend, false), nil
}

// OpenVectorRepository opens an on-disk backend at path and returns a
// repository that owns it. Closing the repository closes the backend.
func OpenVectorRepository(path string) (storage.VectorRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newVectorRepository(backend, true), nil
}

// GetVector returns the stored embedding for text under model.
func (r *VectorRepository) GetVector(_ context.Context, model, text string) ([]float32, bool, error) {
	if r.backend.IsClosed() {
		return nil, false, storage.ErrStorageClosed
	}

	var vector []float32
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(model, text))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			record, err := storage.UnmarshalVectorRecord(val)
			if err != nil {
				return err
			}
			if record.Model != model || record.Text != text {
				return fmt.Errorf("%w: model %q", storage.ErrKeyCollision, model)
			}
			vector = record.Vector
			return nil
		})
	}, false)

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return vector, true, nil
}

// PutVector stores the embedding for text under model, replacing any
// previous value.
func (r *VectorRepository) PutVector(_ context.Context, model, text string, vector []float32) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	value, err := storage.MarshalVectorRecord(&storage.VectorRecord{
		Model:  model,
		Text:   text,
		Vector: core.CloneVector(vector),
	})
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeVectorKey(model, text), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Count returns the number of stored vectors for model.
func (r *VectorRepository) Count(_ context.Context, model string) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeModelPrefix(model)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Purge removes every stored vector for model.
func (r *VectorRepository) Purge(ctx context.Context, model string) (int, error) {
	count, err := r.Count(ctx, model)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	if err := r.backend.DropPrefix(makeModelPrefix(model)); err != nil {
		return 0, err
	}
	r.logger.Info("purged cached vectors", "model", model, "count", count)
	return count, nil
}

// Close closes the backend when the repository owns it.
func (r *VectorRepository) Close() error {
	if !r.owned || r.backend.IsClosed() {
		return nil
	}
	return r.backend.Close()
}
