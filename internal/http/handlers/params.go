package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
)

// uuidParam parses the :id style path param. A malformed id is reported as
// the resource's not-found code since no such row can exist.
func uuidParam(c *gin.Context, name, notFoundCode, notFoundMsg string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, apierr.NotFound(notFoundCode, notFoundMsg)
	}
	return id, nil
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.Validation("invalid_request", name+" must be an integer")
	}
	return v, nil
}
