package gcp

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

func TestNormalizeObjectStorageConfig(t *testing.T) {
	cfg, err := NormalizeObjectStorageConfig(ObjectStorageConfig{})
	require.NoError(t, err)
	assert.Equal(t, ObjectStorageModeLocal, cfg.Mode)
	assert.Equal(t, "media", cfg.LocalDir)
	assert.True(t, cfg.CompatibilityFallback)

	cfg, err = NormalizeObjectStorageConfig(ObjectStorageConfig{EmulatorHost: "http://fake-gcs:4443/", AvatarBucket: "avatars"})
	require.NoError(t, err)
	assert.Equal(t, ObjectStorageModeGCSEmulator, cfg.Mode)
	assert.Equal(t, "http://fake-gcs:4443", cfg.EmulatorHost)

	cfg, err = NormalizeObjectStorageConfig(ObjectStorageConfig{AvatarBucket: "avatars"})
	require.NoError(t, err)
	assert.Equal(t, ObjectStorageModeGCS, cfg.Mode)

	cfg, err = NormalizeObjectStorageConfig(ObjectStorageConfig{Mode: "GCS", AvatarBucket: "avatars"})
	require.NoError(t, err)
	assert.Equal(t, ObjectStorageModeGCS, cfg.Mode)
	assert.False(t, cfg.CompatibilityFallback)
}

func TestNormalizeObjectStorageConfigErrors(t *testing.T) {
	cases := []struct {
		cfg  ObjectStorageConfig
		code ObjectStorageConfigErrorCode
	}{
		{ObjectStorageConfig{Mode: "s3"}, ObjectStorageConfigErrorInvalidMode},
		{ObjectStorageConfig{Mode: "gcs"}, ObjectStorageConfigErrorMissingBucket},
		{ObjectStorageConfig{Mode: "gcs_emulator", AvatarBucket: "a"}, ObjectStorageConfigErrorMissingEmulatorHost},
		{ObjectStorageConfig{Mode: "gcs_emulator", AvatarBucket: "a", EmulatorHost: "fake-gcs"}, ObjectStorageConfigErrorInvalidEmulatorHost},
		{ObjectStorageConfig{Mode: "local", PublicBaseURL: "/relative"}, ObjectStorageConfigErrorInvalidPublicBase},
	}
	for _, tc := range cases {
		_, err := NormalizeObjectStorageConfig(tc.cfg)
		var cfgErr *ObjectStorageConfigError
		require.True(t, errors.As(err, &cfgErr), "%+v: %v", tc.cfg, err)
		assert.Equal(t, tc.code, cfgErr.Code)
		assert.NotEmpty(t, cfgErr.Error())
	}
}

func TestLocalBucketServiceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	bs, err := NewBucketService(context.Background(), logger.Nop(), ObjectStorageConfig{Mode: ObjectStorageModeLocal, LocalDir: dir})
	require.NoError(t, err)
	defer bs.Close()

	dbc := dbctx.Context{Ctx: context.Background()}
	require.NoError(t, bs.UploadFile(dbc, BucketCategoryAvatar, "u1/avatar.png", strings.NewReader("png-bytes")))

	_, err = os.Stat(filepath.Join(dir, "avatar", "u1", "avatar.png"))
	require.NoError(t, err)

	rc, err := bs.DownloadFile(context.Background(), BucketCategoryAvatar, "u1/avatar.png")
	require.NoError(t, err)
	raw, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "png-bytes", string(raw))

	assert.Equal(t, "/media/avatar/u1/avatar.png", bs.GetPublicURL(BucketCategoryAvatar, "/u1/avatar.png"))
	root, ok := LocalRoot(bs)
	assert.True(t, ok)
	assert.Equal(t, dir, root)

	require.NoError(t, bs.DeleteFile(dbc, BucketCategoryAvatar, "u1/avatar.png"))
	require.NoError(t, bs.DeleteFile(dbc, BucketCategoryAvatar, "u1/avatar.png"))
	_, err = bs.DownloadFile(context.Background(), BucketCategoryAvatar, "u1/avatar.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalBucketServiceKeepsKeysInsideRoot(t *testing.T) {
	dir := t.TempDir()
	bs, err := NewBucketService(context.Background(), logger.Nop(), ObjectStorageConfig{Mode: ObjectStorageModeLocal, LocalDir: dir})
	require.NoError(t, err)

	dbc := dbctx.Context{Ctx: context.Background()}
	require.NoError(t, bs.UploadFile(dbc, BucketCategoryAvatar, "../../escape.png", strings.NewReader("x")))
	_, err = os.Stat(filepath.Join(dir, "avatar", "escape.png"))
	assert.NoError(t, err)
	assert.Error(t, bs.UploadFile(dbc, "material", "k", strings.NewReader("x")))
}

func TestContentTypeForKey(t *testing.T) {
	assert.Equal(t, "image/png", contentTypeForKey("a/b.PNG"))
	assert.Equal(t, "image/jpeg", contentTypeForKey("a.jpeg"))
	assert.Equal(t, "application/octet-stream", contentTypeForKey("noext"))
}
