package job

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Manager 定时任务管理（cron表达式带秒字段）
type Manager struct {
	engine       *cron.Cron
	imageCleanup *ImageCleanupJob
	cleanupSpec  string
}

func NewManager(imageCleanup *ImageCleanupJob, cleanupSpec string) *Manager {
	return &Manager{
		engine:       cron.New(cron.WithSeconds()),
		imageCleanup: imageCleanup,
		cleanupSpec:  cleanupSpec,
	}
}

// RegisterJobs 注册定时任务，cleanupSpec为空时不启用头像清理
func (m *Manager) RegisterJobs() error {
	if m.cleanupSpec == "" {
		return nil
	}
	if _, err := m.engine.AddJob(m.cleanupSpec, m.imageCleanup); err != nil {
		return err
	}
	return nil
}

func (m *Manager) Start() {
	slog.Info("cron engine started", "jobs", len(m.engine.Entries()))
	m.engine.Start()
}

// Stop 停止调度并等待正在执行的任务结束
func (m *Manager) Stop(ctx context.Context) {
	slog.Info("cron engine stopping")
	select {
	case <-m.engine.Stop().Done():
	case <-ctx.Done():
		slog.Warn("cron jobs still running at shutdown")
	}
}
