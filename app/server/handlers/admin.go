package handlers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"portfolio-backend/app/server/auth"
	"portfolio-backend/app/server/constants"
	"portfolio-backend/app/server/middlewares"
	"portfolio-backend/app/server/models"
	"portfolio-backend/app/server/store"
)

type userListQuery struct {
	PageQuery
	Role     string `query:"role" validate:"omitempty,oneof=admin user"`
	IsActive string `query:"isActive" validate:"omitempty,oneof=true false"`
}

func (a *App) AdminDashboard(c echo.Context) error {
	rctx := c.Request().Context()

	projectStats, err := a.reporter.Projects(rctx)
	if err != nil {
		return a.fail(c, "failed to get project stats", err)
	}
	contactStats, err := a.reporter.Contacts(rctx)
	if err != nil {
		return a.fail(c, "failed to get contact stats", err)
	}
	userStats, err := a.reporter.Users(rctx)
	if err != nil {
		return a.fail(c, "failed to get user stats", err)
	}

	// 最近的项目与留言
	recentProjects, err := a.projects.Recent(rctx, constants.DashboardRecentLimit)
	if err != nil {
		return a.fail(c, "failed to list recent projects", err)
	}
	recentContacts, err := a.contacts.Recent(rctx, constants.DashboardRecentLimit)
	if err != nil {
		return a.fail(c, "failed to list recent contacts", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"projectStats":   projectStats,
		"contactStats":   contactStats,
		"userStats":      userStats,
		"recentProjects": recentProjects,
		"recentContacts": recentContacts,
	})
}

func (a *App) AdminUserList(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定查询参数
	var q userListQuery
	if err := a.bindQuery(c, &q); err != nil {
		return a.fail(c, "failed to bind query", err)
	}
	p, err := q.params(store.UserQuery)
	if err != nil {
		return a.fail(c, "invalid query", err)
	}

	users, pagination, err := a.users.List(rctx, store.UserFilter{
		Role:     optional[models.Role](q.Role),
		IsActive: optionalBool(q.IsActive),
	}, p)
	if err != nil {
		return a.fail(c, "failed to list users", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users":      models.UserViews(users),
		"pagination": pagination,
	})
}

func (a *App) AdminUserUpdate(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.fail(c, "invalid id", err)
	}

	// 绑定请求体
	var req auth.AccountPatch
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, "failed to bind request", err)
	}

	user, err := a.auth.UpdateAccount(c.Request().Context(), id, req)
	if err != nil {
		return a.fail(c, "failed to update user", err, zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User updated successfully",
		"user":    user.View(),
	})
}

func (a *App) AdminUserDelete(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.fail(c, "invalid id", err)
	}

	if err := a.auth.DeleteUser(c.Request().Context(), id); err != nil {
		return a.fail(c, "failed to delete user", err, zap.Uint("id", id))
	}

	if operator, ok := currentAdmin(c); ok {
		a.l.Info("user deleted by admin", zap.Uint("id", id), zap.String("operator", operator.Username))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "User deleted successfully",
	})
}

// currentAdmin 读取 RequireAdmin 中间件写入的用户
func currentAdmin(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(middlewares.ContextKeyUser).(*models.User)
	return user, ok
}
