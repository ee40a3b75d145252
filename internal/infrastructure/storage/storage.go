package storage

import (
	"context"
	"fmt"

	"github.com/xiebiao/playchat/internal/domain/member"
	"github.com/xiebiao/playchat/internal/infrastructure/config"
)

// NewFileStore 按storage.driver创建头像存储
func NewFileStore(ctx context.Context, cfg *config.Config) (member.FileStore, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverLocal:
		return NewLocalStore(cfg.Storage.UploadDir)
	case config.StorageDriverMinIO:
		return NewMinIOStore(ctx, cfg.MinIO)
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %q", cfg.Storage.Driver)
	}
}
