package member

import (
	"context"
	"log/slog"

	"github.com/xiebiao/playchat/internal/domain/member"
	"github.com/xiebiao/playchat/pkg/metrics"
)

// UpdateProfileCommand 资料修改请求
// Nickname为nil表示不修改昵称
// ProfileImage为nil表示不修改头像，空文件表示恢复默认头像
type UpdateProfileCommand struct {
	MemberID       uint
	RequesterEmail string
	Nickname       *string
	ProfileImage   *member.Upload
}

// UpdateProfileUseCase 资料修改用例
// 校验顺序：没有可修改内容(400) → 会员不存在(404) → 不是本人(403)
type UpdateProfileUseCase struct {
	memberService member.Service
	images        *ProfileImageService
	txManager     Transactor
	publisher     EventPublisher
}

func NewUpdateProfileUseCase(
	memberService member.Service,
	images *ProfileImageService,
	txManager Transactor,
	publisher EventPublisher,
) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{
		memberService: memberService,
		images:        images,
		txManager:     txManager,
		publisher:     publisher,
	}
}

func (uc *UpdateProfileUseCase) Execute(ctx context.Context, cmd UpdateProfileCommand) (err error) {
	defer func() { metrics.RecordProfileUpdate(err) }()

	if cmd.Nickname == nil && cmd.ProfileImage == nil {
		return member.ErrNothingToUpdate
	}

	var (
		updated    *member.Member
		storedName string
	)
	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		m, err := uc.memberService.LoadForUpdate(ctx, cmd.MemberID, cmd.RequesterEmail)
		if err != nil {
			return err
		}

		if cmd.Nickname != nil {
			m.UpdateNickname(*cmd.Nickname)
		}

		if cmd.ProfileImage != nil {
			imageURL := uc.images.DefaultURL()
			if !cmd.ProfileImage.IsEmpty() {
				name, url, err := uc.images.Store(ctx, cmd.ProfileImage)
				if err != nil {
					return err
				}
				storedName, imageURL = name, url
			}
			m.UpdateImageURL(imageURL)
		}

		if err := uc.memberService.Save(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		// 事务回滚后新头像不会被引用
		if storedName != "" {
			if rmErr := uc.images.Remove(context.WithoutCancel(ctx), storedName); rmErr != nil {
				slog.WarnContext(ctx, "删除未使用的头像失败", "name", storedName, "err", rmErr)
			}
		}
		return err
	}

	event := ProfileUpdatedEvent{
		MemberID:   updated.ID,
		Nickname:   updated.Nickname,
		ImageURL:   updated.ImageURL,
		OccurredAt: updated.UpdatedAt,
	}
	if err := uc.publisher.Publish(ctx, RoutingKeyProfileUpdated, event); err != nil {
		slog.WarnContext(ctx, "发布资料修改事件失败", "member_id", updated.ID, "err", err)
	}
	return nil
}
