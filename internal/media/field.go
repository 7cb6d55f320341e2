package media

import (
	"context"
	"log"

	"github.com/VitaminP8/postery-admin/internal/apperr"
)

// PutField stores an upload for a form field. A nil upload stores nothing
// and returns "". Failures come back as *apperr.StorageError on field.
func PutField(ctx context.Context, store Store, field string, upload *Upload, directory string) (string, error) {
	if upload == nil {
		return "", nil
	}
	stored, err := store.Store(ctx, upload, directory)
	if err != nil {
		return "", &apperr.StorageError{Field: field, Err: err}
	}
	return stored, nil
}

// Discard removes files that ended up unreferenced. Errors are only logged:
// the record write they belong to has already been decided.
func Discard(ctx context.Context, store Store, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := store.Delete(ctx, p); err != nil {
			log.Printf("could not discard file %s: %v", p, err)
		}
	}
}
