package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/playchat/internal/domain/member"
	apperrors "github.com/xiebiao/playchat/pkg/errors"
)

// memberRepository 会员仓储实现（MySQL）
// 1. 负责领域实体与GORM模型之间的转换
// 2. 把数据库错误转换为领域错误（记录不存在、邮箱重复）
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建会员仓储
func NewMemberRepository(db *gorm.DB) member.Repository {
	return &memberRepository{db: db}
}

// Create 创建会员
// 邮箱预检查之后仍可能并发插入同一邮箱，唯一索引冲突在这里转换为ErrEmailDuplicate
func (r *memberRepository) Create(ctx context.Context, m *member.Member) error {
	model := toModel(m)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return member.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建会员失败")
	}

	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	m.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找会员
func (r *memberRepository) FindByID(ctx context.Context, id uint) (*member.Member, error) {
	var model MemberModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		return nil, translateFindError(err)
	}
	return toEntity(&model), nil
}

// FindByEmail 根据邮箱查找会员
func (r *memberRepository) FindByEmail(ctx context.Context, email string) (*member.Member, error) {
	var model MemberModel
	if err := getDB(ctx, r.db).Where("email = ?", email).First(&model).Error; err != nil {
		return nil, translateFindError(err)
	}
	return toEntity(&model), nil
}

// ExistsByEmail 邮箱是否已注册
func (r *memberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&MemberModel{}).Where("email = ?", email).Limit(1).Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询会员失败")
	}
	return count > 0, nil
}

// FindAll 按ID升序返回全部会员
func (r *memberRepository) FindAll(ctx context.Context) ([]*member.Member, error) {
	var models []MemberModel
	if err := getDB(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询会员列表失败")
	}

	members := make([]*member.Member, 0, len(models))
	for i := range models {
		members = append(members, toEntity(&models[i]))
	}
	return members, nil
}

// Update 只更新可修改的字段（昵称、头像）
func (r *memberRepository) Update(ctx context.Context, m *member.Member) error {
	result := getDB(ctx, r.db).Model(&MemberModel{ID: m.ID}).Updates(map[string]interface{}{
		"nickname":   m.Nickname,
		"image_url":  m.ImageURL,
		"updated_at": m.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新会员失败")
	}
	if result.RowsAffected == 0 {
		// 值未变化时MySQL也返回0，这里再确认一次是否存在
		if _, err := r.FindByID(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// ImageURLs 所有会员的头像地址
func (r *memberRepository) ImageURLs(ctx context.Context) ([]string, error) {
	var urls []string
	if err := getDB(ctx, r.db).Model(&MemberModel{}).Distinct().Pluck("image_url", &urls).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询头像地址失败")
	}
	return urls, nil
}

// =========================================
// 辅助函数：模型转换
// =========================================

func toEntity(model *MemberModel) *member.Member {
	return &member.Member{
		ID:        model.ID,
		Email:     model.Email,
		Password:  model.Password,
		Nickname:  model.Nickname,
		ImageURL:  model.ImageURL,
		Role:      model.Role,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toModel(m *member.Member) *MemberModel {
	role := m.Role
	if role == "" {
		role = member.RoleMember
	}
	return &MemberModel{
		ID:        m.ID,
		Email:     m.Email,
		Password:  m.Password,
		Nickname:  m.Nickname,
		ImageURL:  m.ImageURL,
		Role:      role,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func translateFindError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return member.ErrMemberNotFound
	}
	return apperrors.Wrap(err, "查询会员失败")
}
