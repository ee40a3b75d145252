package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/playchat/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/t", handler)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/t", nil)
	r.ServeHTTP(w, req)
	return w
}

func TestError_AppErrorUsesItsStatus(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Error(c, apperrors.ErrEmailDuplicate)
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"status":409,"message":"邮箱已被注册","fieldErrors":[]}`, w.Body.String())
}

func TestError_FieldErrorsSerialized(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Error(c, apperrors.ErrValidation.WithFieldErrors(apperrors.FieldError{
			Field: "email", DefaultMessage: "邮箱格式不正确", RejectedValue: "aaa@",
		}))
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.FieldErrors, 1)
	assert.Equal(t, "email", body.FieldErrors[0].Field)
	assert.Equal(t, "aaa@", body.FieldErrors[0].RejectedValue)
}

func TestError_UnknownErrorHidesCause(t *testing.T) {
	w := perform(func(c *gin.Context) {
		Error(c, errors.New("connection refused"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), "系统内部错误")
}

func TestNoContent(t *testing.T) {
	w := perform(func(c *gin.Context) {
		NoContent(c)
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
