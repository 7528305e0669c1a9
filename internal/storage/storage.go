// Package storage persists uploaded image bytes and hands back the public
// reference a post stores as its image field.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"photoshare/internal/config"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Object is an image ready to be written.
type Object struct {
	Name        string
	ContentType string
	Data        []byte
}

// ImageStore saves, serves and releases image objects. Refs are the URLs
// clients use to fetch the image.
type ImageStore interface {
	Save(ctx context.Context, obj Object) (ref string, err error)
	Open(ctx context.Context, ref string) (io.ReadCloser, string, error)
	// Delete releases the object. Releasing a missing object is not an error.
	Delete(ctx context.Context, ref string) error
}

// lastSegment returns the final path element of a ref or a bare name.
func lastSegment(ref string) string {
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndexAny(ref, `/\`); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// New selects the image store named by cfg.ImageStore. GridFS shares the
// document store's database, so db must be non-nil for it.
func New(cfg *config.Config, db *mongo.Database) (ImageStore, error) {
	switch cfg.ImageStore {
	case config.ImageStoreGridFS:
		if db == nil {
			return nil, fmt.Errorf("image store %q requires STORE_DRIVER=%s", cfg.ImageStore, config.StoreMongo)
		}
		return NewGridFSStore(db), nil
	case "", config.ImageStoreDisk:
		return NewDiskStore(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("unsupported image store %q", cfg.ImageStore)
	}
}
