// Package validation 注册自定义校验规则，并把校验错误转换为响应中的fieldErrors
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/xiebiao/playchat/pkg/errors"
)

const (
	passwordMinLen = 8
	passwordMaxLen = 16
)

var once sync.Once

// Register 在gin的默认校验器上注册规则（可重复调用）
// 1. 字段名取form/json tag，fieldErrors中的field与请求参数名一致
// 2. password：8~16位，同时包含字母、数字和特殊字符
// 3. notblank：不能全是空白字符
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin binding validator is not go-playground/validator")
		}
		if err := register(v); err != nil {
			panic(err)
		}
	})
}

// register 注册字段名和自定义规则
func register(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation("password", validatePassword); err != nil {
		return fmt.Errorf("注册password规则失败: %w", err)
	}
	if err := v.RegisterValidation("notblank", validateNotBlank); err != nil {
		return fmt.Errorf("注册notblank规则失败: %w", err)
	}
	return nil
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func validatePassword(fl validator.FieldLevel) bool {
	return IsValidPassword(fl.Field().String())
}

// IsValidPassword 密码规则
func IsValidPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < passwordMinLen || n > passwordMaxLen {
		return false
	}

	var hasLetter, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r > unicode.MaxASCII || unicode.IsSpace(r):
			return false
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Translate 绑定错误 → AppError
// 校验失败返回ErrValidation（带fieldErrors，顺序与结构体字段一致）
// 其他绑定错误（如JSON格式错误、类型不匹配）返回ErrBadRequest
func Translate(err error, obj interface{}) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.ErrBadRequest.WithCause(err)
	}

	tags := tagsOf(obj)
	fieldErrors := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		t := tags[fe.StructField()]
		msg := t.message
		if msg == "" {
			label := t.label
			if label == "" {
				label = fe.Field()
			}
			msg = message(label, fe)
		}
		fieldErrors = append(fieldErrors, apperrors.FieldError{
			Field:          fe.Field(),
			DefaultMessage: msg,
			RejectedValue:  rejectedValue(fe),
		})
	}
	return apperrors.ErrValidation.WithFieldErrors(fieldErrors...)
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return label + "不能为空"
	case "email":
		return label + "格式不正确"
	case "password":
		return fmt.Sprintf("%s必须为%d~%d位，并同时包含字母、数字和特殊字符", label, passwordMinLen, passwordMaxLen)
	case "max":
		return fmt.Sprintf("%s最多%s个字符", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s至少%s个字符", label, fe.Param())
	default:
		return label + "不正确"
	}
}

// rejectedValue 未提交的字段返回nil
func rejectedValue(fe validator.FieldError) interface{} {
	v := reflect.ValueOf(fe.Value())
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		return v.Elem().Interface()
	}
	return v.Interface()
}

// fieldTags label用于拼接提示信息，message设置后该字段的所有校验失败都使用它
type fieldTags struct {
	label   string
	message string
}

func tagsOf(obj interface{}) map[string]fieldTags {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	tags := make(map[string]fieldTags, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tags[f.Name] = fieldTags{label: f.Tag.Get("label"), message: f.Tag.Get("message")}
	}
	return tags
}
