package job

import (
	"context"
	"log/slog"
	"time"

	appmember "github.com/xiebiao/playchat/internal/application/member"
	"github.com/xiebiao/playchat/internal/domain/member"
	"github.com/xiebiao/playchat/pkg/metrics"
)

const imageCleanupTimeout = 5 * time.Minute

// ImageCleanupJob 删除没有会员引用的头像文件
// 换头像、注册补偿失败等情况会留下孤儿文件，定时清理
// 只删除超过minAge的文件，避免删掉刚上传、事务尚未提交的头像
type ImageCleanupJob struct {
	repo   member.Repository
	images *appmember.ProfileImageService
	minAge time.Duration
	now    func() time.Time
}

func NewImageCleanupJob(repo member.Repository, images *appmember.ProfileImageService, minAge time.Duration) *ImageCleanupJob {
	return &ImageCleanupJob{
		repo:   repo,
		images: images,
		minAge: minAge,
		now:    time.Now,
	}
}

// Run 实现cron.Job
func (j *ImageCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), imageCleanupTimeout)
	defer cancel()

	slog.Info("start image cleanup job")
	removed, err := j.Cleanup(ctx)
	if err != nil {
		slog.Error("image cleanup job failed", "removed", removed, "err", err)
		return
	}
	slog.Info("image cleanup job finished", "removed", removed)
}

// Cleanup 返回删除的文件数
func (j *ImageCleanupJob) Cleanup(ctx context.Context) (int, error) {
	// 先列文件再查引用：之后新上传的文件不在列表中，不会被误删
	files, err := j.images.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}

	urls, err := j.repo.ImageURLs(ctx)
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]struct{}, len(urls))
	for _, url := range urls {
		if name, ok := j.images.StoredName(url); ok {
			referenced[name] = struct{}{}
		}
	}

	cutoff := j.now().Add(-j.minAge)
	removed := 0
	for _, f := range files {
		if _, ok := referenced[f.Name]; ok {
			continue
		}
		if f.ModTime.After(cutoff) {
			continue
		}
		if err := j.images.Remove(ctx, f.Name); err != nil {
			slog.WarnContext(ctx, "remove orphan image failed", "name", f.Name, "err", err)
			continue
		}
		removed++
		slog.DebugContext(ctx, "orphan image removed", "name", f.Name, "size", f.Size)
	}

	metrics.RecordImagesCleaned(removed)
	return removed, nil
}
