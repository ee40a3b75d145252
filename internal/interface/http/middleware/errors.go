package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/playchat/pkg/errors"
	"github.com/xiebiao/playchat/pkg/response"
)

var errRouteNotFound = apperrors.New(http.StatusNotFound, "请求的资源不存在")

// NotFound 未匹配的路由返回统一错误结构
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.AbortWithError(c, errRouteNotFound)
	}
}
