package member

import (
	apperrors "github.com/xiebiao/playchat/pkg/errors"
)

// 会员领域错误定义
var (
	// ErrMemberNotFound 会员不存在
	ErrMemberNotFound = apperrors.ErrMemberNotFound

	// ErrEmailDuplicate 邮箱已被注册
	ErrEmailDuplicate = apperrors.ErrEmailDuplicate

	// ErrInvalidCredential 邮箱或密码错误
	ErrInvalidCredential = apperrors.ErrInvalidCredential

	// ErrForbidden 不是本人，不能修改资料
	ErrForbidden = apperrors.ErrForbidden

	// ErrNothingToUpdate 修改请求中既没有昵称也没有头像
	ErrNothingToUpdate = apperrors.ErrNothingToUpdate

	// ErrImageNotFound 头像文件不存在
	ErrImageNotFound = apperrors.ErrImageNotFound

	// ErrInvalidImage 上传的文件不是可识别的图片
	ErrInvalidImage = apperrors.ErrInvalidImage

	// ErrImageTooLarge 上传的文件超过大小限制
	ErrImageTooLarge = apperrors.ErrImageTooLarge

	// ErrImageTooManyPixels 图片宽×高超过像素上限
	ErrImageTooManyPixels = apperrors.ErrImageTooManyPx
)
