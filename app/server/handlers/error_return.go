package handlers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"portfolio-backend/app/server/apperr"
)

func (a *App) er(c echo.Context, statusCode int) error {
	return c.JSON(statusCode, &apperr.ErrorBody{
		Message: http.StatusText(statusCode),
	})
}

// fail 根据错误码返回响应，服务端错误会被记录，但不会把细节返回给调用方
func (a *App) fail(c echo.Context, msg string, err error, fields ...zap.Field) error {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		apperr.Log(a.l, msg, err, append(fields, zap.String("path", c.Path()))...)
	}
	return c.JSON(status, apperr.Body(err))
}
