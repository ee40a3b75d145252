package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	appmember "github.com/xiebiao/playchat/internal/application/member"
	"github.com/xiebiao/playchat/internal/domain/member"
	"github.com/xiebiao/playchat/internal/interface/http/dto"
	"github.com/xiebiao/playchat/internal/interface/http/middleware"
	"github.com/xiebiao/playchat/internal/interface/http/validation"
	apperrors "github.com/xiebiao/playchat/pkg/errors"
	"github.com/xiebiao/playchat/pkg/response"
)

const profileImageField = "profileImage"

// MemberHandler 会员HTTP处理器
// Handler只负责解析请求、调用应用层、返回响应，不包含业务规则
type MemberHandler struct {
	signUp        *appmember.SignUpUseCase
	login         *appmember.LoginUseCase
	refresh       *appmember.RefreshTokenUseCase
	logout        *appmember.LogoutUseCase
	getMember     *appmember.GetMemberUseCase
	updateProfile *appmember.UpdateProfileUseCase
	images        *appmember.ProfileImageService
}

// NewMemberHandler 创建会员处理器
func NewMemberHandler(
	signUp *appmember.SignUpUseCase,
	login *appmember.LoginUseCase,
	refresh *appmember.RefreshTokenUseCase,
	logout *appmember.LogoutUseCase,
	getMember *appmember.GetMemberUseCase,
	updateProfile *appmember.UpdateProfileUseCase,
	images *appmember.ProfileImageService,
) *MemberHandler {
	return &MemberHandler{
		signUp:        signUp,
		login:         login,
		refresh:       refresh,
		logout:        logout,
		getMember:     getMember,
		updateProfile: updateProfile,
		images:        images,
	}
}

// SignUp 会员注册
// @Summary      会员注册
// @Description  邮箱、密码、昵称必填，头像可选（不上传使用默认头像）
// @Tags         会员
// @Accept       multipart/form-data
// @Produce      json
// @Param        email         formData string true  "邮箱"
// @Param        password      formData string true  "密码（8~16位，包含字母、数字和特殊字符）"
// @Param        nickname      formData string true  "昵称（最多50个字符）"
// @Param        profileImage  formData file   false "头像"
// @Success      201 {object} dto.SignUpResponse
// @Failure      400 {object} response.ErrorResponse "输入值不正确"
// @Failure      409 {object} response.ErrorResponse "邮箱已被注册"
// @Router       /api/members/sign-up [post]
func (h *MemberHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, validation.Translate(err, &req))
		return
	}

	upload, closeUpload, err := formUpload(c, profileImageField)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload()

	result, err := h.signUp.Execute(c.Request.Context(), appmember.SignUpCommand{
		Email:        *req.Email,
		Password:     *req.Password,
		Nickname:     *req.Nickname,
		ProfileImage: upload,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, &dto.SignUpResponse{
		Email:    result.Email,
		Nickname: result.Nickname,
	})
}

// Login 登录
// @Summary      登录
// @Tags         会员
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} dto.TokenResponse
// @Failure      400 {object} response.ErrorResponse "输入值不正确"
// @Failure      401 {object} response.ErrorResponse "邮箱或密码错误"
// @Router       /api/members/login [post]
func (h *MemberHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, validation.Translate(err, &req))
		return
	}

	pair, err := h.login.Execute(c.Request.Context(), appmember.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Refresh 刷新Access Token
// @Summary      刷新Token
// @Tags         会员
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} appmember.RefreshResult
// @Failure      401 {object} response.ErrorResponse
// @Router       /api/members/token/refresh [post]
func (h *MemberHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, validation.Translate(err, &req))
		return
	}

	result, err := h.refresh.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Logout 登出
// @Summary      登出
// @Tags         会员
// @Security     BearerAuth
// @Success      204
// @Failure      401 {object} response.ErrorResponse
// @Router       /api/members/logout [post]
func (h *MemberHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.logout.Execute(c.Request.Context(), middleware.GetToken(c), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me 当前登录会员信息
// @Summary      我的信息
// @Tags         会员
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.MemberResponse
// @Failure      401 {object} response.ErrorResponse
// @Failure      404 {object} response.ErrorResponse
// @Router       /api/members/me [get]
func (h *MemberHandler) Me(c *gin.Context) {
	info, err := h.getMember.Me(c.Request.Context(), middleware.GetEmail(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toMemberResponse(info))
}

// GetByID 按ID查询会员
// @Summary      会员信息
// @Tags         会员
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "会员ID"
// @Success      200 {object} dto.MemberResponse
// @Failure      400 {object} response.ErrorResponse "错误的请求"
// @Failure      404 {object} response.ErrorResponse "会员不存在"
// @Router       /api/members/{id} [get]
func (h *MemberHandler) GetByID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	info, err := h.getMember.ByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toMemberResponse(info))
}

// List 全部会员
// @Summary      会员列表
// @Tags         会员
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.MemberResponse
// @Router       /api/members/list [get]
func (h *MemberHandler) List(c *gin.Context) {
	infos, err := h.getMember.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]*dto.MemberResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, toMemberResponse(info))
	}
	response.OK(c, resp)
}

// UpdateProfile 修改资料（POST和PATCH都支持）
// @Summary      修改资料
// @Description  只修改提交的字段；提交空的profileImage恢复默认头像
// @Tags         会员
// @Accept       multipart/form-data
// @Security     BearerAuth
// @Param        id            path     int    true  "会员ID"
// @Param        nickname      formData string false "昵称（最多50个字符）"
// @Param        profileImage  formData file   false "头像"
// @Success      204
// @Failure      400 {object} response.ErrorResponse
// @Failure      403 {object} response.ErrorResponse "没有修改权限"
// @Failure      404 {object} response.ErrorResponse "会员不存在"
// @Router       /api/members/{id}/update [patch]
func (h *MemberHandler) UpdateProfile(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, validation.Translate(err, &req))
		return
	}

	upload, closeUpload, err := formUpload(c, profileImageField)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer closeUpload()

	err = h.updateProfile.Execute(c.Request.Context(), appmember.UpdateProfileCommand{
		MemberID:       id,
		RequesterEmail: middleware.GetEmail(c),
		Nickname:       req.Nickname,
		ProfileImage:   upload,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ProfileImage 下载头像
// @Summary      头像文件
// @Tags         会员
// @Produce      image/png
// @Produce      image/jpeg
// @Security     BearerAuth
// @Param        filename path string true "存储文件名"
// @Success      200 {file} binary
// @Failure      404 {object} response.ErrorResponse "图片不存在"
// @Router       /api/members/profile-image/{filename} [get]
func (h *MemberHandler) ProfileImage(c *gin.Context) {
	file, err := h.images.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Content.Close()

	c.DataFromReader(http.StatusOK, file.Size, file.ContentType, file.Content, map[string]string{
		"Cache-Control": "private, max-age=86400",
	})
}

// =========================================
// 辅助函数
// =========================================

// parseID 路径参数id必须是正整数
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.ErrBadRequest
	}
	return uint(id), nil
}

// formUpload 读取multipart中的文件字段
// 1. 没有该字段：返回nil（不修改头像）
// 2. 字段存在但没有内容（空文件或没有filename的普通字段）：返回空Upload
// 3. 有内容的文件：返回打开的Upload，调用方执行返回的close函数
func formUpload(c *gin.Context, field string) (*member.Upload, func(), error) {
	noop := func() {}
	form := c.Request.MultipartForm
	if form == nil {
		return nil, noop, nil
	}

	if files := form.File[field]; len(files) > 0 {
		fh := files[0]
		if fh.Size == 0 {
			return &member.Upload{Filename: fh.Filename}, noop, nil
		}
		f, err := fh.Open()
		if err != nil {
			return nil, noop, apperrors.ErrBadRequest.WithCause(err)
		}
		return &member.Upload{Filename: fh.Filename, Size: fh.Size, Content: f}, func() { _ = f.Close() }, nil
	}

	if _, ok := form.Value[field]; ok {
		return &member.Upload{}, noop, nil
	}
	return nil, noop, nil
}

func toMemberResponse(info *appmember.MemberInfo) *dto.MemberResponse {
	return &dto.MemberResponse{
		ID:       info.ID,
		Email:    info.Email,
		Nickname: info.Nickname,
		ImageURL: info.ImageURL,
	}
}
