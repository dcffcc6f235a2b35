package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	PostgresSSLMode  string

	SQLitePath string
}

func (c Config) PostgresDSN() string {
	sslMode := c.PostgresSSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresName,
		sslMode,
	)
}

type PostgresService struct {
	db     *gorm.DB
	driver string
	log    *logger.Logger
}

// NewPostgresService opens the relational store. Despite the name it also
// serves the sqlite driver used for local development and tests.
func NewPostgresService(cfg Config, logg *logger.Logger) (*PostgresService, error) {
	serviceLog := logg.With("service", "PostgresService")

	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverPostgres
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	case DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "skillquest.db"
		}
		dialector = sqlite.Open(path + "?_foreign_keys=on")
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := Open(dialector)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// sqlite serialises writers; a single connection avoids SQLITE_BUSY.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	serviceLog.Info("Database connected", "driver", driver)
	return &PostgresService{db: db, driver: driver, log: serviceLog}, nil
}

// Open wraps gorm.Open with the shared config: translated constraint errors
// and a warn-level logger with a 1s slow query threshold.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
		Logger:                                   gormLog,
	})
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) Driver() string { return s.driver }

func (s *PostgresService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
