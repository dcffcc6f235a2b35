package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
	ObjectStorageModeLocal       ObjectStorageMode = "local"
)

type ObjectStorageConfig struct {
	Mode         ObjectStorageMode
	EmulatorHost string
	// LocalDir is the root directory for ObjectStorageModeLocal.
	LocalDir string
	// AvatarBucket is the GCS bucket name for avatars.
	AvatarBucket string
	// PublicBaseURL overrides how object URLs are rendered.
	PublicBaseURL string
	// CredentialsJSON and CredentialsFile authenticate gcs mode.
	CredentialsJSON string
	CredentialsFile string
	// CompatibilityFallback is set when the mode was inferred.
	CompatibilityFallback bool
}

func IsSupportedObjectStorageMode(mode ObjectStorageMode) bool {
	switch mode {
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator, ObjectStorageModeLocal:
		return true
	default:
		return false
	}
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool {
	return cfg.Mode == ObjectStorageModeGCSEmulator
}

func (cfg ObjectStorageConfig) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidEmulatorHost ObjectStorageConfigErrorCode = "invalid_emulator_host"
	ObjectStorageConfigErrorMissingBucket       ObjectStorageConfigErrorCode = "missing_bucket"
	ObjectStorageConfigErrorInvalidPublicBase   ObjectStorageConfigErrorCode = "invalid_public_base_url"
)

type ObjectStorageConfigError struct {
	Code  ObjectStorageConfigErrorCode
	Mode  string
	Value string
	Cause error
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf(
			"invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q)",
			e.Mode,
			ObjectStorageModeGCS,
			ObjectStorageModeGCSEmulator,
			ObjectStorageModeLocal,
		)
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.Value)
	case ObjectStorageConfigErrorMissingBucket:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires AVATAR_GCS_BUCKET_NAME", e.Mode)
	case ObjectStorageConfigErrorInvalidPublicBase:
		return fmt.Sprintf("invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:8080/media", e.Value)
	default:
		return "invalid object storage config"
	}
}

func (e *ObjectStorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NormalizeObjectStorageConfig fills the mode when it was left blank: an
// emulator host selects gcs_emulator, a bucket selects gcs, otherwise local.
func NormalizeObjectStorageConfig(cfg ObjectStorageConfig) (ObjectStorageConfig, error) {
	raw := string(cfg.Mode)
	cfg.Mode = ObjectStorageMode(strings.ToLower(strings.TrimSpace(raw)))
	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")

	if cfg.Mode == "" {
		cfg.CompatibilityFallback = true
		switch {
		case cfg.EmulatorHost != "":
			cfg.Mode = ObjectStorageModeGCSEmulator
		case strings.TrimSpace(cfg.AvatarBucket) != "":
			cfg.Mode = ObjectStorageModeGCS
		default:
			cfg.Mode = ObjectStorageModeLocal
		}
	}
	if cfg.Mode == ObjectStorageModeLocal && strings.TrimSpace(cfg.LocalDir) == "" {
		cfg.LocalDir = "media"
	}
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		if ce, ok := err.(*ObjectStorageConfigError); ok && ce.Code == ObjectStorageConfigErrorInvalidMode {
			ce.Mode = raw
		}
		return cfg, err
	}
	return cfg, nil
}

func ValidateObjectStorageConfig(cfg ObjectStorageConfig) error {
	if !IsSupportedObjectStorageMode(cfg.Mode) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if cfg.PublicBaseURL != "" && !isAbsoluteURL(cfg.PublicBaseURL) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidPublicBase, Mode: string(cfg.Mode), Value: cfg.PublicBaseURL}
	}
	if cfg.Mode == ObjectStorageModeLocal {
		return nil
	}
	if strings.TrimSpace(cfg.AvatarBucket) == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingBucket, Mode: string(cfg.Mode)}
	}
	if !cfg.IsEmulatorMode() {
		return nil
	}
	if cfg.EmulatorHost == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
	}
	if !isAbsoluteURL(cfg.EmulatorHost) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidEmulatorHost, Mode: string(cfg.Mode), Value: cfg.EmulatorHost}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}
