package member

import (
	"context"
	"log/slog"
	"time"

	"github.com/xiebiao/playchat/internal/domain/member"
	"github.com/xiebiao/playchat/pkg/jwt"
	"github.com/xiebiao/playchat/pkg/metrics"
)

// LoginCommand 登录请求
type LoginCommand struct {
	Email    string
	Password string
}

// LoginUseCase 登录用例：校验邮箱密码并签发Token对
type LoginUseCase struct {
	memberService member.Service
	jwtManager    *jwt.Manager
}

func NewLoginUseCase(memberService member.Service, jwtManager *jwt.Manager) *LoginUseCase {
	return &LoginUseCase{memberService: memberService, jwtManager: jwtManager}
}

func (uc *LoginUseCase) Execute(ctx context.Context, cmd LoginCommand) (pair *jwt.TokenPair, err error) {
	defer func() { metrics.RecordLogin(err) }()

	m, err := uc.memberService.Authenticate(ctx, cmd.Email, cmd.Password)
	if err != nil {
		return nil, err
	}

	pair, err = uc.jwtManager.GenerateToken(m.ID, m.Email, m.Role)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "会员登录", "member_id", m.ID)
	return pair, nil
}

// RefreshResult 刷新后的Access Token
type RefreshResult struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// RefreshTokenUseCase 用Refresh Token换取新的Access Token
type RefreshTokenUseCase struct {
	jwtManager *jwt.Manager
}

func NewRefreshTokenUseCase(jwtManager *jwt.Manager) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{jwtManager: jwtManager}
}

func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	token, err := uc.jwtManager.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{
		AccessToken: token,
		TokenType:   jwt.TokenType,
		ExpiresIn:   uc.jwtManager.AccessTokenTTL(),
	}, nil
}

// LogoutUseCase 登出：Access Token在剩余有效期内进入黑名单
type LogoutUseCase struct {
	blacklist TokenBlacklist
}

func NewLogoutUseCase(blacklist TokenBlacklist) *LogoutUseCase {
	return &LogoutUseCase{blacklist: blacklist}
}

func (uc *LogoutUseCase) Execute(ctx context.Context, token string, claims *jwt.Claims) error {
	if err := uc.blacklist.Add(ctx, token, claims.Remaining(time.Now())); err != nil {
		return err
	}
	slog.InfoContext(ctx, "会员登出", "member_id", claims.MemberID)
	return nil
}
