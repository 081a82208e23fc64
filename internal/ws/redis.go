package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ringtoss/backend/internal/game"
)

// Subscriber relays session events published on Redis to the local hub, so
// every server instance's WebSocket clients see events from any instance.
type Subscriber struct {
	rdb    *redis.Client
	hub    *Hub
	logger *zap.Logger
}

func NewSubscriber(rdb *redis.Client, hub *Hub, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Subscriber{rdb: rdb, hub: hub, logger: logger.Named("ws.events")}
}

// Run subscribes until ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	pubsub := s.rdb.Subscribe(ctx, game.EventsChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	s.logger.Info("event subscriber started", zap.String("channel", game.EventsChannel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			s.Relay([]byte(msg.Payload))
		}
	}
}

// Relay forwards one encoded event to the room it belongs to.
func (s *Subscriber) Relay(payload []byte) {
	var ev game.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		s.logger.Warn("invalid event payload", zap.Error(err))
		return
	}
	if ev.SessionID == "" {
		s.logger.Warn("event without session", zap.String("type", string(ev.Type)))
		return
	}

	data, err := json.Marshal(game.Message{Type: "event", Data: ev})
	if err != nil {
		return
	}
	s.logger.Debug("relaying event",
		zap.String("type", string(ev.Type)),
		zap.String("session", ev.SessionID),
		zap.Int("room_size", s.hub.RoomSize(ev.SessionID)))
	s.hub.BroadcastToSession(ev.SessionID, data)
}
