package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

func TestRequestLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.Use(RequestLogger(logger.FromZap(zap.New(core)), "/healthcheck"))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/paths", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/boom", func(c *gin.Context) {
		_ = c.Error(assert.AnError)
		c.Status(http.StatusInternalServerError)
	})

	for _, p := range []string{"/healthcheck", "/api/paths", "/missing", "/api/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "/api/paths", entries[1].ContextMap()["route"])
	assert.NotEmpty(t, entries[1].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "/missing", entries[2].ContextMap()["route"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Contains(t, entries[3].ContextMap()["error"], assert.AnError.Error())
}
