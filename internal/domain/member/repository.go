package member

import (
	"context"
)

// Repository 会员仓储接口
// 接口定义在domain层，具体实现在infrastructure/persistence/mysql
type Repository interface {
	// Create 创建会员
	// 邮箱唯一索引冲突时返回ErrEmailDuplicate
	Create(ctx context.Context, m *Member) error

	// FindByID 不存在时返回ErrMemberNotFound
	FindByID(ctx context.Context, id uint) (*Member, error)

	// FindByEmail 不存在时返回ErrMemberNotFound
	FindByEmail(ctx context.Context, email string) (*Member, error)

	// ExistsByEmail 邮箱是否已注册
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindAll 按ID升序返回全部会员
	FindAll(ctx context.Context) ([]*Member, error)

	// Update 保存昵称和头像地址
	Update(ctx context.Context, m *Member) error

	// ImageURLs 所有会员当前使用的头像地址（清理任务使用）
	ImageURLs(ctx context.Context) ([]string, error)
}
