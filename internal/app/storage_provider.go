package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/skillquest-backend/internal/platform/gcp"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

var newBucketService = gcp.NewBucketService

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorMissingBucket       StorageProviderBootstrapErrorCode = "missing_bucket"
	StorageProviderBootstrapErrorInvalidConfig       StorageProviderBootstrapErrorCode = "invalid_config"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBucketService opens the avatar store for cfg and classifies startup
// failures so operators see which setting is wrong.
func resolveBucketService(ctx context.Context, log *logger.Logger, cfg gcp.ObjectStorageConfig) (gcp.BucketService, error) {
	log.Info(
		"Selecting object storage provider",
		"mode", cfg.Mode,
		"emulator_host", cfg.EmulatorHost,
		"local_dir", cfg.LocalDir,
	)
	bucket, err := newBucketService(ctx, log, cfg)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(cfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", cfg.Mode,
			"emulator_host", cfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return bucket, nil
}

func classifyStorageProviderBootstrapError(cfg gcp.ObjectStorageConfig, err error) error {
	code := StorageProviderBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = StorageProviderBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = StorageProviderBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = StorageProviderBootstrapErrorInvalidEmulatorHost
		case gcp.ObjectStorageConfigErrorMissingBucket:
			code = StorageProviderBootstrapErrorMissingBucket
		default:
			code = StorageProviderBootstrapErrorInvalidConfig
		}
	}
	return &StorageProviderBootstrapError{
		Code:         code,
		Mode:         string(cfg.Mode),
		EmulatorHost: cfg.EmulatorHost,
		Cause:        err,
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
