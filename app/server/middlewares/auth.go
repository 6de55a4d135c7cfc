package middlewares

import (
	"context"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/models"
)

const (
	ContextKeyUserID = "userId" // uint
	ContextKeyUser   = "user"   // *models.User
)

type TokenVerifier interface {
	Verify(token string) (uint, error)
}

type AdminResolver interface {
	RequireAdmin(ctx context.Context, id uint) (*models.User, error)
}

// Auth 校验 Authorization: Bearer <token>，成功后在 context 中写入用户 ID
func Auth(verifier TokenVerifier, l *zap.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ContextKeyUserID,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return verifier.Verify(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			message := "invalid or expired token"
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				message = "access denied, no token provided"
			}
			l.Debug("failed to authenticate request", zap.String("path", c.Path()), zap.Error(err))
			return c.JSON(http.StatusUnauthorized, &apperr.ErrorBody{Message: message})
		},
	})
}

// RequireAdmin 必须在 Auth 之后使用
func RequireAdmin(resolver AdminResolver, l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := c.Get(ContextKeyUserID).(uint)
			if !ok {
				return c.JSON(http.StatusUnauthorized, &apperr.ErrorBody{Message: http.StatusText(http.StatusUnauthorized)})
			}

			user, err := resolver.RequireAdmin(c.Request().Context(), id)
			if err != nil {
				status := apperr.Status(err)
				if status >= http.StatusInternalServerError {
					apperr.Log(l, "failed to resolve admin", err, zap.Uint("id", id))
				}
				return c.JSON(status, apperr.Body(err))
			}

			// 设置 context
			c.Set(ContextKeyUser, user)

			// 继续处理
			return next(c)
		}
	}
}
