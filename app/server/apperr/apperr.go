// Package apperr 定义业务错误码，以及错误码到 HTTP 状态的映射。
package apperr

import (
	"fmt"
	"github.com/samber/oops"
	"net/http"
)

const (
	CodeValidation      = "VALIDATION"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeDependency      = "DEPENDENCY"
)

const (
	keyMessage = "message"
	keyFields  = "fields"
	keyStatus  = "status"
)

// 依赖故障对外只返回这条信息，细节只写入日志
const dependencyMessage = "Internal Server Error"

func Validation(message string, fields map[string]string) error {
	return oops.
		Code(CodeValidation).
		With(keyMessage, message).
		With(keyFields, fields).
		Errorf("validation failed: %s", message)
}

func Unauthenticated(message string) error {
	return oops.Code(CodeUnauthenticated).With(keyMessage, message).Errorf("unauthenticated: %s", message)
}

func Forbidden(message string) error {
	return oops.Code(CodeForbidden).With(keyMessage, message).Errorf("forbidden: %s", message)
}

func NotFound(resource string) error {
	message := resource + " not found"
	return oops.Code(CodeNotFound).With(keyMessage, message).Errorf("%s", message)
}

// Conflict 的状态码因场景而异：已存在管理员时为 403，其余为 400
func Conflict(status int, message string) error {
	return oops.
		Code(CodeConflict).
		With(keyMessage, message).
		With(keyStatus, status).
		Errorf("conflict: %s", message)
}

func Dependency(operation string, err error) error {
	return oops.Code(CodeDependency).With("operation", operation).Wrapf(err, "%s", operation)
}

// Is 判断错误链上是否带有指定的错误码
func Is(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return fmt.Sprint(oopsErr.Code()) == code
}

// Status 将错误映射为 HTTP 状态码，无法识别的错误一律视为 500
func Status(err error) int {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch fmt.Sprint(oopsErr.Code()) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		if status, ok := oopsErr.Context()[keyStatus].(int); ok {
			return status
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message 返回可以展示给调用方的信息
func Message(err error) string {
	status := Status(err)
	if status >= http.StatusInternalServerError {
		return dependencyMessage
	}

	if oopsErr, ok := oops.AsOops(err); ok {
		if message, ok := oopsErr.Context()[keyMessage].(string); ok && message != "" {
			return message
		}
	}
	return http.StatusText(status)
}

// Fields 返回字段级的校验错误，没有时返回 nil
func Fields(err error) map[string]string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	fields, _ := oopsErr.Context()[keyFields].(map[string]string)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
