// member-events 订阅会员事件并写入日志，用于审计和联调
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goccy/go-json"

	appmember "github.com/xiebiao/playchat/internal/application/member"
	"github.com/xiebiao/playchat/internal/infrastructure/config"
	"github.com/xiebiao/playchat/pkg/logger"
	"github.com/xiebiao/playchat/pkg/mq"
)

func main() {
	queue := flag.String("queue", "playchat.member.audit", "订阅使用的队列名")
	keys := flag.String("keys", "member.#", "绑定的routing key，逗号分隔")
	flag.Parse()

	if err := run(*queue, strings.Split(*keys, ",")); err != nil {
		slog.Error("member-events exited with error", "err", err)
		os.Exit(1)
	}
}

func run(queue string, routingKeys []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if _, err := logger.Init(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}); err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, "topic", queue, routingKeys)
	if err != nil {
		return err
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return consumer.Consume(ctx, logEvent)
}

// logEvent 无法解析的消息直接丢弃（返回nil），避免反复重新入队
func logEvent(ctx context.Context, routingKey string, body []byte) error {
	switch routingKey {
	case appmember.RoutingKeySignedUp:
		var ev appmember.SignedUpEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			slog.WarnContext(ctx, "invalid event", "routing_key", routingKey, "err", err)
			return nil
		}
		slog.InfoContext(ctx, "member signed up", "member_id", ev.MemberID, "email", ev.Email, "at", ev.OccurredAt)
	case appmember.RoutingKeyProfileUpdated:
		var ev appmember.ProfileUpdatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			slog.WarnContext(ctx, "invalid event", "routing_key", routingKey, "err", err)
			return nil
		}
		slog.InfoContext(ctx, "member profile updated", "member_id", ev.MemberID, "nickname", ev.Nickname, "image_url", ev.ImageURL, "at", ev.OccurredAt)
	default:
		slog.InfoContext(ctx, "member event", "routing_key", routingKey, "body", string(body))
	}
	return nil
}
