package dto

// SignUpRequest 注册请求（multipart/form-data）
// 字段使用指针，区分"未提交"和"提交了空字符串"，两者在错误响应的rejectedValue中不同
// profileImage文件部分由Handler单独读取
type SignUpRequest struct {
	Email    *string `form:"email" binding:"required,email" label:"邮箱"`
	Password *string `form:"password" binding:"required,password" label:"密码"`
	Nickname *string `form:"nickname" binding:"required,notblank,max=50" label:"昵称"`
}

// SignUpResponse 注册响应
type SignUpResponse struct {
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// UpdateProfileRequest 资料修改请求（multipart/form-data）
// Nickname为nil表示不修改；空字符串和超长使用同一条提示
type UpdateProfileRequest struct {
	Nickname *string `form:"nickname" binding:"omitnil,notblank,max=50" label:"昵称" message:"昵称最多50个字符"`
}

// LoginRequest 登录请求（JSON或表单）
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email" label:"邮箱"`
	Password string `json:"password" form:"password" binding:"required" label:"密码"`
}

// TokenResponse 登录响应
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// RefreshRequest 刷新Token请求
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken" binding:"required" label:"Refresh Token"`
}

// MemberResponse 会员信息
type MemberResponse struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	ImageURL string `json:"imageUrl"`
}
