package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grubk/cypress-clientside/internal/cache"
)

// MessageEvent mirrors an inserted messages row as delivered over the
// live channel.
type MessageEvent struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	ImageURL   string    `json:"image_url,omitempty"`
	Kind       string    `json:"kind"`
	CreatedAt  time.Time `json:"created_at"`
}

// Channel is the store's pub/sub capability. Message-insert events fan
// out on a per-receiver topic; receiver-side filtering still happens in
// the subscriber because the topic is shared across all of a user's
// conversations.
type Channel struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewChannel(c *cache.RedisCache, log *slog.Logger) *Channel {
	return &Channel{rdb: c.Client, log: log}
}

func messageTopic(receiverID string) string {
	return "messages:insert:" + receiverID
}

// PublishMessage announces a newly inserted message row.
func (c *Channel) PublishMessage(ctx context.Context, ev MessageEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.rdb.Publish(ctx, messageTopic(ev.ReceiverID), payload).Err()
}

// Subscription is a live feed of message events. Close tears down the
// underlying channel exactly once; further calls are no-ops.
type Subscription struct {
	C <-chan MessageEvent

	pubsub *redis.PubSub
	once   sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		_ = s.pubsub.Close()
	})
}

// SubscribeMessages opens a live feed of messages addressed to the given
// receiver. The caller owns the returned subscription and must Close it.
func (c *Channel) SubscribeMessages(ctx context.Context, receiverID string) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, messageTopic(receiverID))

	// confirm the subscription before handing it out
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	events := make(chan MessageEvent, 16)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var ev MessageEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				c.log.Warn("dropping undecodable message event", "err", err)
				continue
			}
			events <- ev
		}
	}()

	return &Subscription{C: events, pubsub: pubsub}, nil
}
