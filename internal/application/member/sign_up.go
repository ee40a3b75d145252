package member

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/playchat/internal/domain/member"
	"github.com/xiebiao/playchat/pkg/metrics"
	"github.com/xiebiao/playchat/pkg/saga"
)

const signUpSagaTimeout = 30 * time.Second

// SignUpCommand 注册请求
// ProfileImage为nil或空文件时使用默认头像
type SignUpCommand struct {
	Email        string
	Password     string
	Nickname     string
	ProfileImage *member.Upload
}

// SignUpResult 注册响应
type SignUpResult struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// SignUpUseCase 会员注册用例
// 头像存储和会员写入是两个资源，用Saga保证一致：
// 会员写入失败（包括并发注册导致的邮箱重复）时删除已保存的头像
type SignUpUseCase struct {
	memberService member.Service
	images        *ProfileImageService
	publisher     EventPublisher
}

// NewSignUpUseCase 创建注册用例
func NewSignUpUseCase(memberService member.Service, images *ProfileImageService, publisher EventPublisher) *SignUpUseCase {
	return &SignUpUseCase{
		memberService: memberService,
		images:        images,
		publisher:     publisher,
	}
}

// Execute 执行注册
func (uc *SignUpUseCase) Execute(ctx context.Context, cmd SignUpCommand) (result *SignUpResult, err error) {
	defer func() { metrics.RecordSignUp(err) }()

	// 1. 邮箱预检查，避免为重复邮箱保存头像
	if err := uc.memberService.CheckEmailAvailable(ctx, cmd.Email); err != nil {
		return nil, err
	}

	// 2. 保存头像 → 写入会员
	var (
		storedName string
		imageURL   = uc.images.DefaultURL()
		created    *member.Member
	)

	s := saga.NewSaga("member.sign_up", signUpSagaTimeout)
	s.AddStep("store_profile_image",
		func(ctx context.Context) error {
			if cmd.ProfileImage.IsEmpty() {
				return nil
			}
			name, url, err := uc.images.Store(ctx, cmd.ProfileImage)
			if err != nil {
				return err
			}
			storedName, imageURL = name, url
			return nil
		},
		func(ctx context.Context) error {
			if storedName == "" {
				return nil
			}
			return uc.images.Remove(ctx, storedName)
		},
	)
	s.AddStep("register_member",
		func(ctx context.Context) error {
			m, err := uc.memberService.Register(ctx, cmd.Email, cmd.Password, cmd.Nickname, imageURL)
			if err != nil {
				return err
			}
			created = m
			return nil
		},
		nil,
	)

	if err := s.Execute(ctx); err != nil {
		return nil, saga.Cause(err)
	}

	// 3. 发布事件，失败只记录日志
	event := SignedUpEvent{
		MemberID:   created.ID,
		Email:      created.Email,
		Nickname:   created.Nickname,
		OccurredAt: created.CreatedAt,
	}
	if err := uc.publisher.Publish(ctx, RoutingKeySignedUp, event); err != nil {
		slog.WarnContext(ctx, "发布注册事件失败", "member_id", created.ID, "err", err)
	}

	slog.InfoContext(ctx, "会员注册成功", "member_id", created.ID, "email", created.Email)
	return &SignUpResult{Email: created.Email, Nickname: created.Nickname}, nil
}
