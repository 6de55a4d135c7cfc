package apperr

import (
	"fmt"
	"github.com/samber/oops"
	"go.uber.org/zap"
)

// Log 将错误连同错误码与上下文写入日志
func Log(l *zap.Logger, msg string, err error, fields ...zap.Field) {
	if oopsErr, ok := oops.AsOops(err); ok {
		fields = append(fields,
			zap.String("code", fmt.Sprint(oopsErr.Code())),
			zap.Any("context", oopsErr.Context()),
		)
	}
	fields = append(fields, zap.Error(err))
	l.Error(msg, fields...)
}
