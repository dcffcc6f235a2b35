package services

import (
	"context"

	"github.com/yungbote/skillquest-backend/internal/platform/logger"
	"github.com/yungbote/skillquest-backend/internal/realtime"
	"github.com/yungbote/skillquest-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

// HubEmitter delivers straight to the local hub.
type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Hub == nil {
		return
	}
	e.Hub.Broadcast(msg)
}

// BusEmitter publishes through the cross-instance bus; every instance's
// forwarder hands the message to its own hub.
type BusEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *BusEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e == nil || e.Bus == nil {
		return
	}
	if err := e.Bus.Publish(ctx, msg); err != nil && e.Log != nil {
		e.Log.Warn("Failed to publish realtime message", "event", msg.Event, "error", err)
	}
}
