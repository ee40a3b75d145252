package member

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/playchat/pkg/errors"
)

// Service 会员领域服务
// 设计说明：
// 1. 字段格式校验在HTTP层完成，这里只处理业务规则（邮箱唯一、密码比对、本人校验）
// 2. Service依赖Repository接口，不依赖具体实现
type Service interface {
	// CheckEmailAvailable 邮箱已注册时返回ErrEmailDuplicate
	CheckEmailAvailable(ctx context.Context, email string) error

	// Register 加密密码并创建会员
	Register(ctx context.Context, email, password, nickname, imageURL string) (*Member, error)

	// Authenticate 校验邮箱密码
	Authenticate(ctx context.Context, email, password string) (*Member, error)

	GetByID(ctx context.Context, id uint) (*Member, error)
	GetByEmail(ctx context.Context, email string) (*Member, error)
	List(ctx context.Context) ([]*Member, error)

	// LoadForUpdate 加载会员并校验当前登录者是本人
	LoadForUpdate(ctx context.Context, id uint, requesterEmail string) (*Member, error)

	// Save 保存资料修改
	Save(ctx context.Context, m *Member) error
}

// Option 领域服务选项
type Option func(*service)

// WithBcryptCost 设置bcrypt cost（测试中使用bcrypt.MinCost加速）
func WithBcryptCost(cost int) Option {
	return func(s *service) {
		s.bcryptCost = cost
	}
}

type service struct {
	repo       Repository
	bcryptCost int
}

// NewService 创建会员领域服务
func NewService(repo Repository, opts ...Option) Service {
	s := &service{repo: repo, bcryptCost: 12}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckEmailAvailable 注册前的邮箱预检查
// 并发注册时预检查可能都通过，最终由数据库唯一索引兜底（Repository转换为ErrEmailDuplicate）
func (s *service) CheckEmailAvailable(ctx context.Context, email string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return ErrEmailDuplicate
	}
	return nil
}

// Register 创建会员
// 业务规则：
// 1. 密码bcrypt加密（默认cost=12）
// 2. 角色固定为ROLE_MEMBER
func (s *service) Register(ctx context.Context, email, password, nickname, imageURL string) (*Member, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "密码加密失败")
	}

	m := NewMember(email, string(hashedPassword), nickname, imageURL)
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Authenticate 邮箱不存在和密码错误返回同一个错误，不暴露邮箱是否注册
func (s *service) Authenticate(ctx context.Context, email, password string) (*Member, error) {
	m, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(m.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredential
		}
		return nil, apperrors.Wrap(err, "密码验证失败")
	}
	return m, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*Member, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*Member, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *service) List(ctx context.Context) ([]*Member, error) {
	return s.repo.FindAll(ctx)
}

// LoadForUpdate 先判断会员是否存在（404），再判断是否本人（403）
func (s *service) LoadForUpdate(ctx context.Context, id uint, requesterEmail string) (*Member, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.IsOwnedBy(requesterEmail) {
		return nil, ErrForbidden
	}
	return m, nil
}

func (s *service) Save(ctx context.Context, m *Member) error {
	return s.repo.Update(ctx, m)
}
