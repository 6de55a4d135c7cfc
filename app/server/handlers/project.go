package handlers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/constants"
	"portfolio-backend/app/server/models"
	"portfolio-backend/app/server/store"
	"portfolio-backend/app/server/utils"
	"strings"
	"time"
)

type projectListQuery struct {
	PageQuery
	Category   string `query:"category" validate:"omitempty,oneof=frontend backend fullstack mobile ai other"`
	Featured   string `query:"featured" validate:"omitempty,oneof=true false"`
	Status     string `query:"status" validate:"omitempty,oneof=completed in-progress planned"`
	Difficulty string `query:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	Technology string `query:"technology" validate:"max=50"`
	Tag        string `query:"tag" validate:"max=30"`
	Visibility string `query:"visibility" validate:"omitempty,oneof=public hidden"` // 只在管理接口中生效
}

func (q *projectListQuery) filter() store.ProjectFilter {
	f := store.ProjectFilter{
		Category:   optional[models.ProjectCategory](q.Category),
		Featured:   optionalBool(q.Featured),
		Status:     optional[models.ProjectStatus](q.Status),
		Difficulty: optional[models.Difficulty](q.Difficulty),
		Technology: optional[string](q.Technology),
		Tag:        optional[string](q.Tag),
	}
	switch q.Visibility {
	case "public":
		f.IsPublic = optionalBool("true")
	case "hidden":
		f.IsPublic = optionalBool("false")
	}
	return f
}

type projectSearchQuery struct {
	Q          string `query:"q" validate:"max=100"`
	Category   string `query:"category" validate:"omitempty,oneof=frontend backend fullstack mobile ai other"`
	Technology string `query:"technology" validate:"max=50"`
}

// projectInput 用于创建与更新，nil 表示未提供
type projectInput struct {
	Title            *string                 `json:"title" validate:"omitempty,min=1,max=100"`
	Description      *string                 `json:"description" validate:"omitempty,min=10,max=1000"`
	ShortDescription *string                 `json:"shortDescription" validate:"omitempty,max=200"`
	Technologies     []string                `json:"technologies" validate:"omitempty,max=30,dive,required,max=50"`
	Category         *models.ProjectCategory `json:"category" validate:"omitempty,oneof=frontend backend fullstack mobile ai other"`
	Image            *string                 `json:"image" validate:"omitempty,url"`
	Images           []string                `json:"images" validate:"omitempty,max=20,dive,url"`
	LiveURL          *string                 `json:"liveUrl" validate:"omitempty,url"`
	GithubURL        *string                 `json:"githubUrl" validate:"omitempty,github_repo"`
	Tags             []string                `json:"tags" validate:"omitempty,max=30,dive,required,max=30"`
	Highlights       []string                `json:"highlights" validate:"omitempty,dive,max=200"`
	Challenges       []string                `json:"challenges" validate:"omitempty,dive,max=300"`
	Solutions        []string                `json:"solutions" validate:"omitempty,dive,max=300"`
	Status           *models.ProjectStatus   `json:"status" validate:"omitempty,oneof=completed in-progress planned"`
	Difficulty       *models.Difficulty      `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	Featured         *bool                   `json:"featured"`
	IsPublic         *bool                   `json:"isPublic"`
	Order            *int                    `json:"order" validate:"omitempty,gte=0"`
	StartDate        *time.Time              `json:"startDate"`
	EndDate          *time.Time              `json:"endDate"`
}

// check 补充结构体标签无法表达的规则
func (req *projectInput) check(creating bool) error {
	fields := map[string]string{}
	if creating {
		if req.Title == nil {
			fields["title"] = "is required"
		}
		if req.Description == nil {
			fields["description"] = "is required"
		}
		if req.Technologies == nil {
			fields["technologies"] = "is required"
		}
		if req.Category == nil {
			fields["category"] = "is required"
		}
	}
	if req.Technologies != nil && len(req.Technologies) == 0 {
		fields["technologies"] = "must contain at least one technology"
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		fields["title"] = "is required"
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		fields["endDate"] = "must not be before startDate"
	}
	if len(fields) > 0 {
		return apperr.Validation("validation failed", fields)
	}
	return nil
}

func (a *App) projectMapFields(req *projectInput, project *models.Project) {
	if req.Title != nil {
		project.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	if req.ShortDescription != nil {
		project.ShortDescription = strings.TrimSpace(*req.ShortDescription)
	}
	if req.Technologies != nil {
		project.Technologies = req.Technologies
	}
	if req.Category != nil {
		project.Category = *req.Category
	}
	if req.Image != nil {
		project.Image = *req.Image
	}
	if req.Images != nil {
		project.Images = req.Images
	}
	if req.LiveURL != nil {
		project.LiveURL = *req.LiveURL
	}
	if req.GithubURL != nil {
		project.GithubURL = *req.GithubURL
	}
	if req.Tags != nil {
		project.Tags = req.Tags
	}
	if req.Highlights != nil {
		project.Highlights = req.Highlights
	}
	if req.Challenges != nil {
		project.Challenges = req.Challenges
	}
	if req.Solutions != nil {
		project.Solutions = req.Solutions
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.Difficulty != nil {
		project.Difficulty = *req.Difficulty
	}
	if req.Featured != nil {
		project.Featured = *req.Featured
	}
	if req.IsPublic != nil {
		project.IsPublic = *req.IsPublic
	}
	if req.Order != nil {
		project.Order = *req.Order
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}

	// 没有简介时从描述中截取
	if project.ShortDescription == "" {
		project.ShortDescription = models.DefaultShortDescription(project.Description, constants.ShortDescriptionMaxLength)
	}
}

func (a *App) listProjects(c echo.Context, publicOnly bool) error {
	rctx := c.Request().Context()

	// 绑定查询参数
	var q projectListQuery
	if err := a.bindQuery(c, &q); err != nil {
		return a.fail(c, "failed to bind query", err)
	}
	p, err := q.params(store.ProjectQuery)
	if err != nil {
		return a.fail(c, "invalid query", err)
	}

	f := q.filter()
	if publicOnly {
		f = f.PublicOnly()
	}

	projects, pagination, err := a.projects.List(rctx, f, p)
	if err != nil {
		return a.fail(c, "failed to list projects", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"projects":   projects,
		"pagination": pagination,
	})
}

func (a *App) ProjectList(c echo.Context) error {
	return a.listProjects(c, true)
}

// ProjectAdminList 包括未公开的项目
func (a *App) ProjectAdminList(c echo.Context) error {
	return a.listProjects(c, false)
}

func (a *App) ProjectFeatured(c echo.Context) error {
	projects, err := a.projects.Featured(c.Request().Context(), constants.FeaturedProjectsLimit)
	if err != nil {
		return a.fail(c, "failed to list featured projects", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"projects": projects,
	})
}

func (a *App) ProjectSearch(c echo.Context) error {
	// 绑定查询参数
	var q projectSearchQuery
	if err := a.bindQuery(c, &q); err != nil {
		return a.fail(c, "failed to bind query", err)
	}

	f := store.ProjectFilter{
		Category:   optional[models.ProjectCategory](q.Category),
		Technology: optional[string](q.Technology),
	}
	projects, err := a.projects.Search(c.Request().Context(), strings.TrimSpace(q.Q), f, constants.SearchProjectsLimit)
	if err != nil {
		return a.fail(c, "failed to search projects", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"projects": projects,
	})
}

func (a *App) ProjectCategories(c echo.Context) error {
	facets, err := a.projects.Facets(c.Request().Context())
	if err != nil {
		return a.fail(c, "failed to list project categories", err)
	}

	return c.JSON(http.StatusOK, facets)
}

// ProjectGet 返回公开项目详情，每次请求访问计数加一
func (a *App) ProjectGet(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.fail(c, "invalid id", err)
	}

	project, err := a.projects.View(c.Request().Context(), id)
	if err != nil {
		return a.fail(c, "failed to view project", err, zap.Uint("id", id))
	}
	a.m.ObserveProjectView()

	return c.JSON(http.StatusOK, echo.Map{
		"project": project,
	})
}

func (a *App) ProjectLike(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.fail(c, "invalid id", err)
	}

	project, err := a.projects.Like(c.Request().Context(), id)
	if err != nil {
		return a.fail(c, "failed to like project", err, zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Project liked",
		"likes":   project.Metrics.Likes,
	})
}

// ProjectAdminGet 不增加访问计数，也可以读取未公开的项目
func (a *App) ProjectAdminGet(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.fail(c, "invalid id", err)
	}

	project, err := a.projects.Get(c.Request().Context(), id)
	if err != nil {
		return a.fail(c, "failed to get project", err, zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"project": project,
	})
}

func (a *App) ProjectCreate(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req projectInput
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, "failed to bind request", err)
	}
	if err := req.check(true); err != nil {
		return a.fail(c, "invalid project", err)
	}

	// 创建项目
	project := models.Project{
		Status:     models.ProjectStatusCompleted,
		Difficulty: models.DifficultyIntermediate,
		IsPublic:   true,
	}
	a.projectMapFields(&req, &project)

	// 未提供的列表字段以空数组保存
	project.Images = utils.StringsOrEmpty(project.Images)
	project.Tags = utils.StringsOrEmpty(project.Tags)
	project.Highlights = utils.StringsOrEmpty(project.Highlights)
	project.Challenges = utils.StringsOrEmpty(project.Challenges)
	project.Solutions = utils.StringsOrEmpty(project.Solutions)

	if err := a.projects.Create(rctx, &project); err != nil {
		return a.fail(c, "failed to create project", err, zap.String("title", project.Title))
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Project created successfully",
		"project": project,
	})
}

func (a *App) ProjectUpdate(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.fail(c, "invalid id", err)
	}

	// 绑定请求体
	var req projectInput
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, "failed to bind request", err)
	}
	if err := req.check(false); err != nil {
		return a.fail(c, "invalid project", err)
	}

	project, err := a.projects.Update(c.Request().Context(), id, func(p *models.Project) error {
		a.projectMapFields(&req, p)
		if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
			return apperr.Validation("validation failed", map[string]string{"endDate": "must not be before startDate"})
		}
		return nil
	})
	if err != nil {
		return a.fail(c, "failed to update project", err, zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Project updated successfully",
		"project": project,
	})
}

func (a *App) ProjectDelete(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.fail(c, "invalid id", err)
	}

	if err := a.projects.Delete(c.Request().Context(), id); err != nil {
		return a.fail(c, "failed to delete project", err, zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Project deleted successfully",
	})
}

func (a *App) ProjectStats(c echo.Context) error {
	report, err := a.reporter.Projects(c.Request().Context())
	if err != nil {
		return a.fail(c, "failed to get project stats", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"stats": report,
	})
}
