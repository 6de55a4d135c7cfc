package handlers

import (
	"errors"
	"fmt"
	"github.com/go-playground/validator/v10"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/auth"
	"reflect"
	"regexp"
	"strings"
)

var (
	usernamePattern   = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	githubRepoPattern = regexp.MustCompile(`^https?://(www\.)?github\.com/[^/\s]+(/[^\s]*)?$`)
)

// Validator 实现 echo.Validator，错误统一转换为 VALIDATION 错误码
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// 使用 json / query 名作为字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return auth.PasswordStrongEnough(fl.Field().String())
	})
	_ = v.RegisterValidation("github_repo", func(fl validator.FieldLevel) bool {
		return githubRepoPattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperr.Dependency("validate request", err)
	}

	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		name := fieldPath(fe.Namespace())
		if _, exists := fields[name]; !exists {
			fields[name] = describe(fe)
		}
	}
	return apperr.Validation("validation failed", fields)
}

// fieldPath 去掉最外层结构体名，例如 projectInput.socialLinks.github -> socialLinks.github
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at least %s items", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at most %s items", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "username":
		return "may only contain letters, numbers, and underscores"
	case "password":
		return "must contain at least one uppercase letter, one lowercase letter, and one number"
	case "github_repo":
		return "must be a valid GitHub URL"
	default:
		return "is invalid"
	}
}
