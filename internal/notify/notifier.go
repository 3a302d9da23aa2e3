// Package notify hands password reset requests to whatever delivers them.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResetMessage is the payload an external mailer consumes.
type ResetMessage struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ResetURL  string    `json:"reset_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier delivers reset messages.
type Notifier interface {
	NotifyPasswordReset(ctx context.Context, msg ResetMessage) error
}

// RedisQueue pushes reset messages onto a Redis list.
type RedisQueue struct {
	client redis.Cmdable
	key    string
}

// NewRedisQueue builds a notifier writing to the list at key.
func NewRedisQueue(client redis.Cmdable, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) NotifyPasswordReset(ctx context.Context, msg ResetMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode reset message: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, body).Err(); err != nil {
		return fmt.Errorf("push reset message: %w", err)
	}
	return nil
}

// LogNotifier only records that a message would have been sent.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier returns a notifier that logs without the reset URL.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyPasswordReset(_ context.Context, msg ResetMessage) error {
	n.logger.Info("password reset notification skipped",
		zap.String("user_id", msg.UserID),
		zap.Time("expires_at", msg.ExpiresAt))
	return nil
}
