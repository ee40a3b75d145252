package validation

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/playchat/pkg/errors"
)

func TestIsValidPassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"aaaaaa1!", true},
		{"Abcdefg1234567@#", true},
		{"", false},
		{"aaaa!@2", false},
		{"ccc@3cccccccccccc", false},
		{"bbbbbbbb1", false},
		{"AAAAAAAAA!", false},
		{"@11111111", false},
		{"aaaa 111!", false},
		{"비밀번호1234!", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPassword(tt.password))
		})
	}
}

type sample struct {
	Email    *string `form:"email" binding:"required,email" label:"邮箱"`
	Nickname *string `json:"nick" binding:"omitnil,notblank,max=5" label:"昵称"`
}

func TestTranslate(t *testing.T) {
	Register()

	blank := "   "
	err := binding.Validator.ValidateStruct(&sample{Nickname: &blank})
	require.Error(t, err)

	appErr := apperrors.GetAppError(Translate(err, &sample{}))
	assert.Equal(t, apperrors.ErrValidation.Status, appErr.Status)
	require.Len(t, appErr.FieldErrors, 2)

	assert.Equal(t, "email", appErr.FieldErrors[0].Field)
	assert.Equal(t, "邮箱不能为空", appErr.FieldErrors[0].DefaultMessage)
	assert.Nil(t, appErr.FieldErrors[0].RejectedValue)

	assert.Equal(t, "nick", appErr.FieldErrors[1].Field)
	assert.Equal(t, blank, appErr.FieldErrors[1].RejectedValue)

	long := "abcdef"
	email := "a@b.com"
	err = binding.Validator.ValidateStruct(&sample{Email: &email, Nickname: &long})
	appErr = apperrors.GetAppError(Translate(err, &sample{}))
	require.Len(t, appErr.FieldErrors, 1)
	assert.Equal(t, "昵称最多5个字符", appErr.FieldErrors[0].DefaultMessage)
}

func TestTranslate_NonValidationError(t *testing.T) {
	appErr := apperrors.GetAppError(Translate(errors.New("unexpected EOF"), nil))
	assert.Equal(t, apperrors.ErrBadRequest.Message, appErr.Message)
	assert.Empty(t, appErr.FieldErrors)
}

func TestTranslate_MessageOverride(t *testing.T) {
	Register()

	type update struct {
		Nickname *string `form:"nickname" binding:"omitnil,notblank,max=3" label:"昵称" message:"昵称最多3个字符"`
	}

	for _, v := range []string{"", "abcd"} {
		v := v
		err := binding.Validator.ValidateStruct(&update{Nickname: &v})
		appErr := apperrors.GetAppError(Translate(err, &update{}))
		require.Len(t, appErr.FieldErrors, 1)
		assert.Equal(t, "昵称最多3个字符", appErr.FieldErrors[0].DefaultMessage)
		assert.Equal(t, v, appErr.FieldErrors[0].RejectedValue)
	}

	assert.NoError(t, binding.Validator.ValidateStruct(&update{}), "nil表示不修改")
}

func TestRegister_FreshValidator(t *testing.T) {
	v := validator.New()
	require.NoError(t, register(v))

	type rules struct {
		Password string `json:"pw" validate:"password"`
		Nickname string `form:"nick" validate:"notblank"`
	}

	require.NoError(t, v.Struct(rules{Password: "aaaaaa1!", Nickname: "nick"}))

	err := v.Struct(rules{Password: "short", Nickname: "   "})
	var ve validator.ValidationErrors
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve, 2)
	assert.Equal(t, "pw", ve[0].Field())
	assert.Equal(t, "password", ve[0].Tag())
	assert.Equal(t, "nick", ve[1].Field())
	assert.Equal(t, "notblank", ve[1].Tag())
}
