package member

import (
	"context"
	"time"
)

// EventPublisher 领域事件发布（pkg/mq.Publisher、mq.NopPublisher）
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// Transactor 事务边界（mysql.TxManager）
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenBlacklist 已登出Token（redis.TokenBlacklist）
type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}
