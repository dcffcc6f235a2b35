package db

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(gorm.ErrRecordNotFound))
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{PostgresHost: "db", PostgresPort: "5432", PostgresUser: "sq", PostgresPassword: "pw", PostgresName: "skillquest"}
	assert.Equal(t, "postgres://sq:pw@db:5432/skillquest?sslmode=disable", cfg.PostgresDSN())
	cfg.PostgresSSLMode = "require"
	assert.Contains(t, cfg.PostgresDSN(), "sslmode=require")
}

func TestNewPostgresServiceRejectsUnknownDriver(t *testing.T) {
	_, err := NewPostgresService(Config{Driver: "mysql"}, logger.Nop())
	assert.Error(t, err)
}

func TestAutoMigrateAllOnSQLite(t *testing.T) {
	gdb, err := Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, AutoMigrateAll(gdb))
	for _, table := range []string{"users", "user_token", "learning_paths", "modules", "lessons", "user_progress", "achievements", "user_achievements", "streaks", "daily_challenges"} {
		assert.True(t, gdb.Migrator().HasTable(table), table)
	}
}
