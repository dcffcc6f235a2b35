package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/skillquest-backend/internal/http/response"
	"github.com/yungbote/skillquest-backend/internal/platform/apierr"
	"github.com/yungbote/skillquest-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
	"github.com/yungbote/skillquest-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient // key: SessionID (UserToken.ID)
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /sse/stream
// One stream per session; reconnecting replaces the previous stream.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil || rd.SessionID == uuid.Nil {
		response.RespondErr(c, apierr.Unauthenticated("unauthorized", "Authentication credentials were not provided"))
		return
	}
	userID, sessionID := rd.UserID, rd.SessionID

	client := h.hub.NewSSEClient(userID)
	h.mu.Lock()
	if existing, ok := h.clients[sessionID]; ok {
		h.hub.CloseClient(existing)
	}
	h.clients[sessionID] = client
	h.mu.Unlock()

	h.hub.AddChannel(client, realtime.UserChannel(userID))
	h.log.Info("SSE stream opened", "user_id", userID, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	if h.clients[sessionID] == client {
		delete(h.clients, sessionID)
	}
	h.mu.Unlock()
	h.hub.CloseClient(client)
	h.log.Debug("SSE stream closed", "user_id", userID, "client_id", client.ID)
}
