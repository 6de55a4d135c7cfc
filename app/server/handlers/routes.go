package handlers

import (
	"github.com/labstack/echo/v4"
	"portfolio-backend/app/server/middlewares"
)

// Register 绑定所有 /api 路由
func (a *App) Register(e *echo.Echo) {
	authed := middlewares.Auth(a.auth, a.l)
	admin := middlewares.RequireAdmin(a.auth, a.l)

	api := e.Group("/api")
	api.GET("/health", a.HealthCheck)

	// 认证
	authGroup := api.Group("/auth")
	authGroup.POST("/register", a.AuthRegister)
	authGroup.POST("/login", a.AuthLogin)
	authGroup.GET("/admin/exists", a.AuthAdminExists)
	authGroup.GET("/admin/info", a.AuthAdminInfo)
	authGroup.GET("/profile", a.AuthProfileGet, authed)
	authGroup.PUT("/profile", a.AuthProfileUpdate, authed)
	authGroup.PUT("/change-password", a.AuthChangePassword, authed)

	// 项目
	projects := api.Group("/projects")
	projects.GET("", a.ProjectList)
	projects.GET("/featured", a.ProjectFeatured)
	projects.GET("/search", a.ProjectSearch)
	projects.GET("/categories", a.ProjectCategories)
	projects.GET("/:id", a.ProjectGet)
	projects.POST("/:id/like", a.ProjectLike)
	projects.POST("", a.ProjectCreate, authed, admin)
	projects.PUT("/:id", a.ProjectUpdate, authed, admin)
	projects.DELETE("/:id", a.ProjectDelete, authed, admin)
	projects.GET("/admin/stats", a.ProjectStats, authed, admin)
	projects.GET("/admin/all", a.ProjectAdminList, authed, admin)
	projects.GET("/admin/:id", a.ProjectAdminGet, authed, admin)

	// 联系表单
	contact := api.Group("/contact")
	contact.POST("/submit", a.ContactSubmit)
	contact.GET("", a.ContactList, authed, admin)
	contact.GET("/stats", a.ContactStats, authed, admin)
	contact.GET("/:id", a.ContactGet, authed, admin)
	contact.PUT("/:id", a.ContactUpdate, authed, admin)
	contact.PUT("/:id/spam", a.ContactMarkSpam, authed, admin)
	contact.DELETE("/:id", a.ContactDelete, authed, admin)

	// 管理
	adminGroup := api.Group("/admin", authed, admin)
	adminGroup.GET("/dashboard", a.AdminDashboard)
	adminGroup.GET("/users", a.AdminUserList)
	adminGroup.PUT("/users/:id", a.AdminUserUpdate)
	adminGroup.DELETE("/users/:id", a.AdminUserDelete)
	adminGroup.GET("/health", a.AdminHealth)
	adminGroup.GET("/export/:type", a.AdminExport)
}
