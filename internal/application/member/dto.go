package member

import (
	"time"

	"github.com/jinzhu/copier"

	"github.com/xiebiao/playchat/internal/domain/member"
)

// MemberInfo 会员信息（不含密码和角色）
type MemberInfo struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	ImageURL string `json:"imageUrl"`
}

func toMemberInfo(m *member.Member) *MemberInfo {
	info := &MemberInfo{}
	_ = copier.Copy(info, m)
	return info
}

func toMemberInfos(members []*member.Member) []*MemberInfo {
	infos := make([]*MemberInfo, 0, len(members))
	for _, m := range members {
		infos = append(infos, toMemberInfo(m))
	}
	return infos
}

// =========================================
// 领域事件
// =========================================

const (
	RoutingKeySignedUp       = "member.signed_up"
	RoutingKeyProfileUpdated = "member.profile_updated"
)

// SignedUpEvent 注册成功
type SignedUpEvent struct {
	MemberID   uint      `json:"memberId"`
	Email      string    `json:"email"`
	Nickname   string    `json:"nickname"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ProfileUpdatedEvent 资料修改成功
type ProfileUpdatedEvent struct {
	MemberID   uint      `json:"memberId"`
	Nickname   string    `json:"nickname"`
	ImageURL   string    `json:"imageUrl"`
	OccurredAt time.Time `json:"occurredAt"`
}
