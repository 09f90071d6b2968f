package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/drogueria/backoffice/internal/port/outbound"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// refreshNotice is the pub/sub payload.
type refreshNotice struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// refreshNotifier implements outbound.RefreshNotifierPort over Redis pub/sub.
type refreshNotifier struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRefreshNotifier creates a new refresh notifier adapter.
func NewRefreshNotifier(client *redis.Client, channel string, logger *zap.Logger) outbound.RefreshNotifierPort {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &refreshNotifier{client: client, channel: channel, logger: logger.Named("refresh-notifier")}
}

// Compile-time interface check
var _ outbound.RefreshNotifierPort = (*refreshNotifier)(nil)

func (n *refreshNotifier) Publish(ctx context.Context, reason string) error {
	data, err := encodeNotice(reason, time.Now())
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("publish refresh notice: %w", err)
	}
	return nil
}

func (n *refreshNotifier) Subscribe(ctx context.Context, handler func(reason string)) error {
	sub := n.client.Subscribe(ctx, n.channel)
	// Wait for the subscription to be confirmed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", n.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler(decodeNotice(msg.Payload))
			}
		}
	}()
	n.logger.Info("subscribed to refresh notices", zap.String("channel", n.channel))
	return nil
}

func encodeNotice(reason string, at time.Time) (string, error) {
	data, err := json.Marshal(refreshNotice{Reason: reason, At: at.UTC()})
	if err != nil {
		return "", fmt.Errorf("encode refresh notice: %w", err)
	}
	return string(data), nil
}

// decodeNotice tolerates plain-text payloads from other publishers.
func decodeNotice(payload string) string {
	var notice refreshNotice
	if err := json.Unmarshal([]byte(payload), &notice); err != nil || notice.Reason == "" {
		return payload
	}
	return notice.Reason
}
