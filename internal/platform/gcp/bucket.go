package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/skillquest-backend/internal/platform/dbctx"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type BucketCategory string

const (
	BucketCategoryAvatar BucketCategory = "avatar"
)

// ErrObjectNotFound is returned by DownloadFile for a missing key.
var ErrObjectNotFound = errors.New("object not found")

type BucketService interface {
	UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error
	DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error
	DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error)
	GetPublicURL(category BucketCategory, key string) string
	Close() error
}

// NewBucketService picks the backend for cfg.Mode.
func NewBucketService(ctx context.Context, log *logger.Logger, cfg ObjectStorageConfig) (BucketService, error) {
	cfg, err := NormalizeObjectStorageConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "BucketService")
	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
		"public_base_url", cfg.PublicBaseURL,
		"avatar_bucket", cfg.AvatarBucket,
		"local_dir", cfg.LocalDir,
	)

	if cfg.Mode == ObjectStorageModeLocal {
		return newLocalBucketService(serviceLog, cfg)
	}

	stClient, err := newStorageClientForMode(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		cfg:           cfg,
	}, nil
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		opts := append(credentialOptions(cfg), option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		// The storage client reads the emulator endpoint from the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

// credentialOptions prefers inline JSON over a key file. Neither set means
// application default credentials.
func credentialOptions(cfg ObjectStorageConfig) []option.ClientOption {
	if raw := strings.TrimSpace(cfg.CredentialsJSON); raw != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(raw))}
	}
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}
	return nil
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	cfg           ObjectStorageConfig
}

func (bs *bucketService) bucketName(category BucketCategory) (string, error) {
	switch category {
	case BucketCategoryAvatar:
		return bs.cfg.AvatarBucket, nil
	default:
		return "", fmt.Errorf("unknown bucket category: %s", category)
	}
}

func (bs *bucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error {
	name, err := bs.bucketName(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(dbc.Ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(name).Object(key).NewWriter(ctx)
	w.ContentType = contentTypeForKey(key)
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error {
	name, err := bs.bucketName(category)
	if err != nil {
		return err
	}
	err = bs.storageClient.Bucket(name).Object(key).Delete(dbc.Ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete GCS object: %w", err)
	}
	return nil
}

func (bs *bucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	name, err := bs.bucketName(category)
	if err != nil {
		return nil, err
	}
	r, err := bs.storageClient.Bucket(name).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open GCS object: %w", err)
	}
	return r, nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	name, err := bs.bucketName(category)
	if err != nil {
		return key
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if bs.cfg.IsEmulatorMode() {
		base := bs.cfg.PublicBaseURL
		if base == "" {
			base = bs.cfg.EmulatorHost
		}
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(name), url.PathEscape(key))
	}
	if bs.cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", bs.cfg.PublicBaseURL, name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", name, key)
}

func (bs *bucketService) Close() error {
	return bs.storageClient.Close()
}

func contentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// localBucketService keeps objects on disk under <LocalDir>/<category>/<key>.
type localBucketService struct {
	log  *logger.Logger
	root string
	base string
}

func newLocalBucketService(log *logger.Logger, cfg ObjectStorageConfig) (BucketService, error) {
	root, err := filepath.Abs(cfg.LocalDir)
	if err != nil {
		return nil, fmt.Errorf("resolve LOCAL_STORAGE_DIR: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create LOCAL_STORAGE_DIR: %w", err)
	}
	base := cfg.PublicBaseURL
	if base == "" {
		base = "/media"
	}
	return &localBucketService{log: log, root: root, base: base}, nil
}

// Root is the directory the HTTP layer serves under the public base path.
func (ls *localBucketService) Root() string { return ls.root }

func (ls *localBucketService) objectPath(category BucketCategory, key string) (string, error) {
	if category != BucketCategoryAvatar {
		return "", fmt.Errorf("unknown bucket category: %s", category)
	}
	clean := path.Clean("/" + strings.TrimSpace(key))
	if clean == "/" {
		return "", fmt.Errorf("empty object key")
	}
	return filepath.Join(ls.root, string(category), filepath.FromSlash(clean)), nil
}

func (ls *localBucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error {
	p, err := ls.objectPath(category, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write local object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (ls *localBucketService) DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error {
	p, err := ls.objectPath(category, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (ls *localBucketService) DownloadFile(ctx context.Context, category BucketCategory, key string) (io.ReadCloser, error) {
	p, err := ls.objectPath(category, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return f, nil
}

func (ls *localBucketService) GetPublicURL(category BucketCategory, key string) string {
	return fmt.Sprintf("%s/%s/%s", ls.base, category, strings.TrimLeft(strings.TrimSpace(key), "/"))
}

func (ls *localBucketService) Close() error { return nil }

// LocalRoot returns the on-disk root when bs stores objects locally.
func LocalRoot(bs BucketService) (string, bool) {
	if l, ok := bs.(*localBucketService); ok {
		return l.Root(), true
	}
	return "", false
}
