package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/playchat/pkg/errors"
)

// ErrorResponse 统一错误响应结构
// 设计说明：
// 1. Status与HTTP状态码一致
// 2. FieldErrors始终是数组，没有字段错误时为[]而不是null
type ErrorResponse struct {
	Status      int                    `json:"status"`
	Message     string                 `json:"message"`
	FieldErrors []apperrors.FieldError `json:"fieldErrors"`
}

// OK 200响应，data直接作为响应体
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 204响应，没有响应体
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	err := signUpUseCase.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	// 内部错误只记录日志，不返回给客户端
	if appErr.Err != nil {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", appErr.Status,
			"err", appErr.Err,
		)
	}

	c.JSON(appErr.Status, NewErrorResponse(appErr))
}

// AbortWithError 中间件使用：写入错误响应并终止后续Handler
func AbortWithError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// NewErrorResponse AppError → 响应体
func NewErrorResponse(appErr *apperrors.AppError) ErrorResponse {
	fieldErrors := appErr.FieldErrors
	if fieldErrors == nil {
		fieldErrors = []apperrors.FieldError{}
	}
	return ErrorResponse{
		Status:      appErr.Status,
		Message:     appErr.Message,
		FieldErrors: fieldErrors,
	}
}
