package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/playchat/internal/infrastructure/config"
)

func TestClientOptions(t *testing.T) {
	rc := config.RedisConfig{
		Host: "cache", Port: 6380, Password: "secret", DB: 2,
		PoolSize: 20, MinIdleConns: 4,
		DialTimeout: time.Second, ReadTimeout: 2 * time.Second, WriteTimeout: 3 * time.Second,
	}

	opts := clientOptions(rc)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "playchat-api", opts.ClientName)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 20, opts.PoolSize)
	assert.Equal(t, 4, opts.MinIdleConns)
	assert.Equal(t, 3*time.Second, opts.WriteTimeout)
}

func TestPingTimeout(t *testing.T) {
	assert.Equal(t, 3*time.Second, pingTimeout(config.RedisConfig{DialTimeout: time.Second, ReadTimeout: 2 * time.Second}))
	assert.Equal(t, 5*time.Second, pingTimeout(config.RedisConfig{}))
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &config.Config{}
	// 端口1上不会有Redis
	cfg.Redis = config.RedisConfig{Host: "127.0.0.1", Port: 1, DialTimeout: 200 * time.Millisecond, ReadTimeout: 200 * time.Millisecond}

	client, err := NewClient(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
}
