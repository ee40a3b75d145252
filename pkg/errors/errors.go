package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Status直接对应HTTP状态码，客户端按状态码判断错误类别
// 2. Message是用户友好的提示信息
// 3. FieldErrors只在参数校验失败时填充，其余情况为空数组
// 4. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Status      int          `json:"status"`
	Message     string       `json:"message"`
	FieldErrors []FieldError `json:"fieldErrors"`
	Err         error        `json:"-"`
}

// FieldError 单个字段的校验失败信息
type FieldError struct {
	Field          string `json:"field"`
	DefaultMessage string `json:"defaultMessage"`
	RejectedValue  any    `json:"rejectedValue"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同状态码同消息视为同一种错误
// 预定义错误经过WithFieldErrors/WithCause复制后仍能被errors.Is识别
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Status == t.Status && e.Message == t.Message
}

// WithFieldErrors 返回附带字段错误的副本（预定义错误是共享的，不能原地修改）
func (e *AppError) WithFieldErrors(fieldErrors ...FieldError) *AppError {
	cp := *e
	cp.FieldErrors = append(make([]FieldError, 0, len(fieldErrors)), fieldErrors...)
	return &cp
}

// WithCause 返回附带内部错误的副本
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New 创建新的AppError
func New(status int, message string) *AppError {
	return &AppError{
		Status:      status,
		Message:     message,
		FieldErrors: []FieldError{},
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为500错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Status:      http.StatusInternalServerError,
		Message:     message,
		FieldErrors: []FieldError{},
		Err:         err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(http.StatusInternalServerError, "系统内部错误")
	ErrDatabaseError = New(http.StatusInternalServerError, "数据库错误")
	ErrRedisError    = New(http.StatusInternalServerError, "缓存服务错误")
	ErrStorageError  = New(http.StatusInternalServerError, "文件存储服务错误")

	// 认证授权
	ErrUnauthorized      = New(http.StatusUnauthorized, "请先登录")
	ErrTokenFormat       = New(http.StatusUnauthorized, "Token格式错误")
	ErrInvalidToken      = New(http.StatusUnauthorized, "无效的Token")
	ErrTokenExpired      = New(http.StatusUnauthorized, "Token已过期")
	ErrTokenRevoked      = New(http.StatusUnauthorized, "Token已失效，请重新登录")
	ErrInvalidCredential = New(http.StatusUnauthorized, "邮箱或密码错误")
	ErrForbidden         = New(http.StatusForbidden, "没有修改权限")

	// 资源不存在
	ErrMemberNotFound = New(http.StatusNotFound, "会员不存在")
	ErrImageNotFound  = New(http.StatusNotFound, "图片不存在")

	// 业务规则
	ErrEmailDuplicate  = New(http.StatusConflict, "邮箱已被注册")
	ErrNothingToUpdate = New(http.StatusBadRequest, "没有需要修改的会员信息")
	ErrInvalidImage    = New(http.StatusBadRequest, "不支持的图片格式")
	ErrImageTooLarge   = New(http.StatusBadRequest, "图片大小超出限制")
	ErrImageTooManyPx  = New(http.StatusBadRequest, "图片尺寸超出限制")

	// 参数错误
	ErrValidation = New(http.StatusBadRequest, "输入值不正确")
	ErrBadRequest = New(http.StatusBadRequest, "错误的请求")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.WithCause(err)
}
