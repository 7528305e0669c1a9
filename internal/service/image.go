package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"path/filepath"
	"strings"
	"time"

	"photoshare/internal/models"
	"photoshare/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const DefaultMaxUploadMB = 5

// ImageUpload is the raw multipart file attached to a create-post request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// prepareImage checks that the payload is a decodable image within the size
// limit and names it for storage.
func prepareImage(in *ImageUpload, maxBytes int64) (storage.Object, error) {
	if in == nil || len(in.Data) == 0 {
		return storage.Object{}, models.NewValidationError("Image is required")
	}
	if int64(len(in.Data)) > maxBytes {
		return storage.Object{}, models.NewValidationError(
			fmt.Sprintf("Image too large (max %dMB)", maxBytes/(1024*1024)))
	}

	mtype := mimetype.Detect(in.Data)
	contentType := mtype.String()
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !strings.HasPrefix(contentType, "image/") {
		return storage.Object{}, models.NewValidationError("Only image files are allowed")
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(in.Data)); err != nil {
		return storage.Object{}, models.NewValidationError("Invalid image file")
	}

	ext, ok := imageExtensions[contentType]
	if !ok {
		ext = strings.ToLower(filepath.Ext(in.Filename))
		if ext == "" {
			ext = mtype.Extension()
		}
	}

	return storage.Object{
		Name:        fmt.Sprintf("image-%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext),
		ContentType: contentType,
		Data:        in.Data,
	}, nil
}
