package realtime

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubOrderingAndClose(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	userID := uuid.New()
	channel := UserChannel(userID)

	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, channel)
	require.Equal(t, 1, hub.Subscribers(channel))

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventXPAwarded, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventStreakUpdated, Data: map[string]any{"seq": 2}})
	hub.Broadcast(SSEMessage{Channel: "user:someone-else", Event: SSEEventAchievementUnlocked})

	assert.Equal(t, SSEEventXPAwarded, recvMessage(t, client.Outbound, time.Second).Event)
	assert.Equal(t, SSEEventStreakUpdated, recvMessage(t, client.Outbound, time.Second).Event)

	hub.CloseClient(client)
	hub.CloseClient(client)
	assert.Equal(t, 0, hub.Subscribers(channel))
	_, ok := <-client.Outbound
	assert.False(t, ok, "outbound should be closed")

	// Broadcasting after close must not panic.
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventXPAwarded})
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "c")
	for i := 0; i < cap(client.Outbound)+5; i++ {
		hub.Broadcast(SSEMessage{Channel: "c", Event: SSEEventXPAwarded})
	}
	assert.Equal(t, cap(client.Outbound), len(client.Outbound))
}

func TestSSEHubServeHTTPStreamsEvents(t *testing.T) {
	hub := NewSSEHub(logger.Nop())
	userID := uuid.New()
	client := hub.NewSSEClient(userID)
	hub.AddChannel(client, UserChannel(userID))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeHTTP(w, r, client)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	hub.Broadcast(SSEMessage{Channel: UserChannel(userID), Event: SSEEventAchievementUnlocked, Data: map[string]any{"title": "First Steps"}})

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	assert.Equal(t, "event: AchievementUnlocked", lines[0])
	assert.Contains(t, lines[1], `"title":"First Steps"`)
}
