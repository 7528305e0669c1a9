package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"photoshare/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// GridFSPrefix is the API path GridFS images are served under.
const GridFSPrefix = "/api/images/"

// GridFSBucketName names the files/chunks collections.
const GridFSBucketName = "images"

// GridFSStore keeps images in a MongoDB GridFS bucket.
type GridFSStore struct {
	bucket *mongo.GridFSBucket
}

func NewGridFSStore(db *mongo.Database) *GridFSStore {
	return &GridFSStore{
		bucket: db.GridFSBucket(options.GridFSBucket().SetName(GridFSBucketName)),
	}
}

type fileMetadata struct {
	ContentType string `bson:"contentType"`
}

func (s *GridFSStore) Save(ctx context.Context, obj Object) (string, error) {
	opts := options.GridFSUpload().SetMetadata(fileMetadata{ContentType: obj.ContentType})
	id, err := s.bucket.UploadFromStream(ctx, obj.Name, bytes.NewReader(obj.Data), opts)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return GridFSPrefix + id.Hex(), nil
}

func fileID(ref string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(lastSegment(ref))
	if err != nil {
		return bson.NilObjectID, fmt.Errorf("%w: image ref %q", models.ErrInvalidID, ref)
	}
	return oid, nil
}

func (s *GridFSStore) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	id, err := fileID(ref)
	if err != nil {
		return nil, "", err
	}
	stream, err := s.bucket.OpenDownloadStream(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrFileNotFound) {
			return nil, "", fmt.Errorf("image %s: %w", ref, models.ErrNotFound)
		}
		return nil, "", fmt.Errorf("open image: %w", err)
	}

	contentType := "application/octet-stream"
	var meta fileMetadata
	if raw := stream.GetFile().Metadata; raw != nil {
		if err := bson.Unmarshal(raw, &meta); err == nil && meta.ContentType != "" {
			contentType = meta.ContentType
		}
	}
	return stream, contentType, nil
}

func (s *GridFSStore) Delete(ctx context.Context, ref string) error {
	id, err := fileID(ref)
	if err != nil {
		return err
	}
	if err := s.bucket.Delete(ctx, id); err != nil && !errors.Is(err, mongo.ErrFileNotFound) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
