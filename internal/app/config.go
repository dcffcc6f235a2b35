package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/skillquest-backend/internal/clients/redis"
	"github.com/yungbote/skillquest-backend/internal/data/db"
	"github.com/yungbote/skillquest-backend/internal/observability"
	"github.com/yungbote/skillquest-backend/internal/platform/envutil"
	"github.com/yungbote/skillquest-backend/internal/platform/gcp"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port        string
	Environment string

	DB db.Config

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// StreakTimezone names the IANA zone whose calendar days count for streaks.
	StreakTimezone string

	Redis           redis.Config
	RedisChannel    string
	CatalogCacheTTL time.Duration
	LeaderboardKey  string

	Storage gcp.ObjectStorageConfig

	TokenSweepCron string

	MetricsEnabled bool
	Otel           observability.OtelConfig

	CORSAllowOrigins []string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func LoadConfig(log *logger.Logger) Config {
	env := envutil.String("ENVIRONMENT", "development", log)
	cfg := Config{
		Port:        envutil.String("PORT", "8080", log),
		Environment: env,
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverPostgres, log),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", log),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432", log),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres", log),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", log),
			PostgresName:     envutil.String("POSTGRES_NAME", "skillquest", log),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable", log),
			SQLitePath:       envutil.String("SQLITE_PATH", "skillquest.db", log),
		},
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", defaultJWTSecret, log),
		AccessTokenTTL:  envutil.Duration("ACCESS_TOKEN_TTL", time.Hour, log),
		RefreshTokenTTL: envutil.Duration("REFRESH_TOKEN_TTL", 7*24*time.Hour, log),
		StreakTimezone:  envutil.String("STREAK_TIMEZONE", "UTC", log),
		Redis: redis.Config{
			Addr:     envutil.String("REDIS_ADDR", "", log),
			Password: envutil.String("REDIS_PASSWORD", "", log),
			DB:       envutil.Int("REDIS_DB", 0, log),
		},
		RedisChannel:    envutil.String("REDIS_CHANNEL", "skillquest:sse", log),
		CatalogCacheTTL: envutil.Duration("CATALOG_CACHE_TTL", 5*time.Minute, log),
		LeaderboardKey:  envutil.String("LEADERBOARD_KEY", "skillquest:leaderboard", log),
		Storage: gcp.ObjectStorageConfig{
			Mode:            gcp.ObjectStorageMode(envutil.String("OBJECT_STORAGE_MODE", "", log)),
			EmulatorHost:    envutil.String("STORAGE_EMULATOR_HOST", "", log),
			LocalDir:        envutil.String("LOCAL_STORAGE_DIR", "media", log),
			AvatarBucket:    envutil.String("AVATAR_GCS_BUCKET_NAME", "", log),
			PublicBaseURL:   envutil.String("OBJECT_STORAGE_PUBLIC_BASE_URL", "", log),
			CredentialsJSON: envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", "", nil),
			CredentialsFile: envutil.String("GOOGLE_APPLICATION_CREDENTIALS", "", log),
		},
		TokenSweepCron: envutil.String("TOKEN_SWEEP_CRON", "@hourly", log),
		MetricsEnabled: envutil.Bool("METRICS_ENABLED", true, log),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false, log),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "skillquest", log),
			Environment: env,
			Version:     envutil.String("APP_VERSION", "dev", log),
			Exporter:    envutil.String("OTEL_EXPORTER", "", log),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", true, log),
			SampleRatio: envutil.Float("OTEL_SAMPLE_RATIO", 1.0, log),
		},
		CORSAllowOrigins: envutil.List("CORS_ALLOW_ORIGINS", nil, log),
		HTTPReadTimeout:  envutil.Duration("HTTP_READ_TIMEOUT", 30*time.Second, log),
		HTTPWriteTimeout: envutil.Duration("HTTP_WRITE_TIMEOUT", 0, log),
	}
	if cfg.JWTSecretKey == defaultJWTSecret && log != nil {
		log.Warn("JWT_SECRET_KEY is not set; using the insecure development default")
	}
	return cfg
}

// StreakLocation resolves StreakTimezone; blank means UTC.
func (c Config) StreakLocation() (*time.Location, error) {
	name := strings.TrimSpace(c.StreakTimezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid STREAK_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

func (c Config) Addr() string {
	port := strings.TrimSpace(c.Port)
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}
