package handlers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"portfolio-backend/app/server/auth"
	"portfolio-backend/app/server/middlewares"
	"portfolio-backend/app/server/models"
	"time"
)

type registerRequest struct {
	Username string             `json:"username" validate:"required,min=3,max=30,username"`
	Email    string             `json:"email" validate:"required,email,max=254"`
	Password string             `json:"password" validate:"required,min=6,max=128,password"`
	Role     string             `json:"role"` // 忽略，注册的账号总是管理员
	Profile  *auth.ProfilePatch `json:"profile"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required_without=Username,max=254"`
	Username string `json:"username" validate:"omitempty,max=30"`
	Password string `json:"password" validate:"required,max=128"`
}

type profileUpdateRequest struct {
	Profile *auth.ProfilePatch `json:"profile" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=128"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=128,password"`
}

type sessionResponse struct {
	Message   string          `json:"message"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      models.UserView `json:"user"`
}

func (a *App) AuthRegister(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req registerRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, "failed to bind request", err)
	}

	// 注册管理员
	session, err := a.auth.RegisterFirstAdmin(rctx, auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Profile:  req.Profile.Apply(models.Profile{}),
	})
	if err != nil {
		return a.fail(c, "failed to register admin", err, zap.String("username", req.Username))
	}

	// 返回
	return c.JSON(http.StatusCreated, &sessionResponse{
		Message:   "Admin user created successfully",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User.View(),
	})
}

func (a *App) AuthLogin(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req loginRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, "failed to bind request", err)
	}

	identity := req.Email
	if identity == "" {
		identity = req.Username
	}

	// 登录
	session, err := a.auth.Login(rctx, identity, req.Password)
	if err != nil {
		return a.fail(c, "failed to login", err)
	}

	// 返回
	return c.JSON(http.StatusOK, &sessionResponse{
		Message:   "Login successful",
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.User.View(),
	})
}

func (a *App) AuthAdminExists(c echo.Context) error {
	exists, err := a.auth.AdminExists(c.Request().Context())
	if err != nil {
		return a.fail(c, "failed to check admin", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"adminExists": exists,
	})
}

// AuthAdminInfo 返回公开展示用的管理员资料，不包含邮箱等联系方式
func (a *App) AuthAdminInfo(c echo.Context) error {
	admin, err := a.auth.AdminInfo(c.Request().Context())
	if err != nil {
		return a.fail(c, "failed to get admin info", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"admin": echo.Map{
			"username": admin.Username,
			"profile":  admin.Profile.Data(),
		},
	})
}

func (a *App) AuthProfileGet(c echo.Context) error {
	id, ok := currentUserID(c)
	if !ok {
		return a.er(c, http.StatusUnauthorized)
	}

	user, err := a.auth.Profile(c.Request().Context(), id)
	if err != nil {
		return a.fail(c, "failed to get profile", err, zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": user.View(),
	})
}

func (a *App) AuthProfileUpdate(c echo.Context) error {
	id, ok := currentUserID(c)
	if !ok {
		return a.er(c, http.StatusUnauthorized)
	}

	// 绑定请求体
	var req profileUpdateRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, "failed to bind request", err)
	}

	user, err := a.auth.UpdateProfile(c.Request().Context(), id, req.Profile)
	if err != nil {
		return a.fail(c, "failed to update profile", err, zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    user.View(),
	})
}

func (a *App) AuthChangePassword(c echo.Context) error {
	id, ok := currentUserID(c)
	if !ok {
		return a.er(c, http.StatusUnauthorized)
	}

	// 绑定请求体
	var req changePasswordRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, "failed to bind request", err)
	}

	if err := a.auth.ChangePassword(c.Request().Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		return a.fail(c, "failed to change password", err, zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Password changed successfully",
	})
}

// currentUserID 读取 Auth 中间件写入的用户 ID
func currentUserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(middlewares.ContextKeyUserID).(uint)
	return id, ok && id != 0
}
