package member

import (
	"context"

	"github.com/xiebiao/playchat/internal/domain/member"
)

// GetMemberUseCase 会员查询
type GetMemberUseCase struct {
	memberService member.Service
}

func NewGetMemberUseCase(memberService member.Service) *GetMemberUseCase {
	return &GetMemberUseCase{memberService: memberService}
}

// Me 当前登录会员（按Token中的邮箱查询）
func (uc *GetMemberUseCase) Me(ctx context.Context, email string) (*MemberInfo, error) {
	m, err := uc.memberService.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toMemberInfo(m), nil
}

func (uc *GetMemberUseCase) ByID(ctx context.Context, id uint) (*MemberInfo, error) {
	m, err := uc.memberService.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMemberInfo(m), nil
}

// List 全部会员，按ID升序
func (uc *GetMemberUseCase) List(ctx context.Context) ([]*MemberInfo, error) {
	members, err := uc.memberService.List(ctx)
	if err != nil {
		return nil, err
	}
	return toMemberInfos(members), nil
}
