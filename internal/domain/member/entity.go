package member

import (
	"time"
)

// RoleMember 所有注册会员的角色
const RoleMember = "ROLE_MEMBER"

// Member 会员实体（聚合根）
// 设计说明：
// 1. Password保存bcrypt哈希值，任何响应都不包含该字段
// 2. ImageURL是可直接访问的完整地址（默认头像或上传头像）
// 3. 领域实体不依赖GORM tag，映射在persistence层完成
type Member struct {
	ID        uint
	Email     string
	Password  string
	Nickname  string
	ImageURL  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMember 创建新会员（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewMember(email, hashedPassword, nickname, imageURL string) *Member {
	now := time.Now()
	return &Member{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		ImageURL:  imageURL,
		Role:      RoleMember,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOwnedBy 只有会员本人（按登录邮箱判断）可以修改资料
func (m *Member) IsOwnedBy(email string) bool {
	return email != "" && m.Email == email
}

// UpdateNickname 修改昵称
func (m *Member) UpdateNickname(nickname string) {
	m.Nickname = nickname
	m.UpdatedAt = time.Now()
}

// UpdateImageURL 修改头像地址
func (m *Member) UpdateImageURL(imageURL string) {
	m.ImageURL = imageURL
	m.UpdatedAt = time.Now()
}
