package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"photoshare/internal/config"
	"photoshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDiskStore_Lifecycle(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	ctx := context.Background()

	data := pngBytes(t)
	ref, err := store.Save(ctx, Object{Name: "image-1.png", ContentType: "image/png", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/image-1.png", ref)

	rc, contentType, err := store.Open(ctx, ref)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(store.Dir(), "image-1.png"))
	assert.True(t, os.IsNotExist(err))

	// releasing twice is fine
	require.NoError(t, store.Delete(ctx, ref))

	_, _, err = store.Open(ctx, ref)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDiskStore_RefCannotEscapeDir(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o600))

	store, err := NewDiskStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "/uploads/../secret.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)

	assert.ErrorIs(t, store.Delete(context.Background(), "/uploads/.."), models.ErrInvalidID)
}

func TestLastSegment(t *testing.T) {
	tests := map[string]string{
		"/uploads/a.png":  "a.png",
		"/api/images/abc": "abc",
		`..\..\evil.png`:  "evil.png",
		"/uploads/dir/":   "dir",
		"":                "",
	}
	for in, want := range tests {
		assert.Equal(t, want, lastSegment(in), in)
	}
}

func TestGridFSFileID(t *testing.T) {
	_, err := fileID("/api/images/not-hex")
	assert.ErrorIs(t, err, models.ErrInvalidID)

	id, err := fileID("/api/images/65a1b2c3d4e5f60718293a4b")
	require.NoError(t, err)
	assert.Equal(t, "65a1b2c3d4e5f60718293a4b", id.Hex())
}

func TestNew(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	store, err := New(&config.Config{ImageStore: config.ImageStoreDisk, UploadDir: dir}, nil)
	require.NoError(t, err)
	disk, ok := store.(*DiskStore)
	require.True(t, ok)
	assert.Equal(t, dir, disk.Dir())

	_, err = New(&config.Config{ImageStore: config.ImageStoreGridFS}, nil)
	assert.ErrorContains(t, err, "requires STORE_DRIVER")

	_, err = New(&config.Config{ImageStore: "s3"}, nil)
	assert.ErrorContains(t, err, "unsupported")
}
