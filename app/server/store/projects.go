package store

import (
	"context"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/models"
	"portfolio-backend/app/server/query"
)

// projectWritableColumns 不包含访问计数，避免编辑时覆盖并发的计数更新
var projectWritableColumns = []string{
	"title", "description", "short_description", "technologies", "image", "images",
	"live_url", "github_url", "tags", "highlights", "challenges", "solutions",
	"category", "status", "difficulty", "featured", "is_public", "sort_order",
	"start_date", "end_date", "updated_at",
}

type ProjectStore struct {
	db *gorm.DB
}

func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

type ProjectFilter struct {
	IsPublic   *bool
	Category   *models.ProjectCategory
	Featured   *bool
	Status     *models.ProjectStatus
	Difficulty *models.Difficulty
	Technology *string
	Tag        *string
}

// PublicOnly 用于公开接口，忽略调用方传入的可见性条件
func (f ProjectFilter) PublicOnly() ProjectFilter {
	visible := true
	f.IsPublic = &visible
	return f
}

func (f ProjectFilter) scopes() []query.Scope {
	return []query.Scope{
		query.Eq("is_public", f.IsPublic),
		query.Eq("category", f.Category),
		query.Eq("featured", f.Featured),
		query.Eq("status", f.Status),
		query.Eq("difficulty", f.Difficulty),
		query.Contains("technologies", f.Technology),
		query.Contains("tags", f.Tag),
	}
}

func (s *ProjectStore) List(ctx context.Context, f ProjectFilter, p query.Params) ([]models.Project, query.Pagination, error) {
	return query.Find[models.Project](ctx, s.db, ProjectQuery, p, f.scopes()...)
}

func (s *ProjectStore) Get(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "project", "find project")
	}
	return &project, nil
}

// View 对公开项目的访问计数加一并返回最新的记录，计数在单条 UPDATE 中完成
func (s *ProjectStore) View(ctx context.Context, id uint) (*models.Project, error) {
	return s.increment(ctx, id, "metrics_views")
}

func (s *ProjectStore) Like(ctx context.Context, id uint) (*models.Project, error) {
	return s.increment(ctx, id, "metrics_likes")
}

func (s *ProjectStore) increment(ctx context.Context, id uint, column string) (*models.Project, error) {
	var project models.Project
	res := s.db.WithContext(ctx).
		Model(&project).
		Clauses(clause.Returning{}).
		Where("id = ? AND is_public = ?", id, true).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return nil, apperr.Dependency("increment project "+column, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("project")
	}

	// UpdateColumn 不会触发 AfterFind
	project.Duration = models.DurationDays(project.StartDate, project.EndDate)
	return &project, nil
}

func (s *ProjectStore) Create(ctx context.Context, project *models.Project) error {
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return apperr.Dependency("create project", err)
	}
	return nil
}

func (s *ProjectStore) Update(ctx context.Context, id uint, mutate Mutator[models.Project]) (*models.Project, error) {
	var project models.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&project, "id = ?", id).Error; err != nil {
			return wrap(err, "project", "find project")
		}
		if err := mutate(&project); err != nil {
			return err
		}
		if err := tx.Model(&project).Select(projectWritableColumns).Updates(&project).Error; err != nil {
			return apperr.Dependency("update project", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Project{}, id)
	if res.Error != nil {
		return apperr.Dependency("delete project", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("project")
	}
	return nil
}

// Featured 返回置顶的公开项目
func (s *ProjectStore) Featured(ctx context.Context, limit int) ([]models.Project, error) {
	projects := []models.Project{}
	if err := s.db.WithContext(ctx).
		Where("featured = ? AND is_public = ?", true, true).
		Order("sort_order ASC").Order("created_at DESC").Order("id ASC").
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, apperr.Dependency("list featured projects", err)
	}
	return projects, nil
}

// Search 在公开项目中搜索，置顶项目优先
func (s *ProjectStore) Search(ctx context.Context, term string, f ProjectFilter, limit int) ([]models.Project, error) {
	projects := []models.Project{}
	if err := s.db.WithContext(ctx).
		Model(&models.Project{}).
		Scopes(f.PublicOnly().scopes()...).
		Scopes(query.Search(ProjectQuery.SearchColumns, term)).
		Order("featured DESC").Order("created_at DESC").Order("id ASC").
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, apperr.Dependency("search projects", err)
	}
	return projects, nil
}

type ProjectFacets struct {
	Categories   []string `json:"categories"`
	Technologies []string `json:"technologies"`
	Tags         []string `json:"tags"`
}

// Facets 返回公开项目中出现过的分类、技术与标签
func (s *ProjectStore) Facets(ctx context.Context) (*ProjectFacets, error) {
	facets := ProjectFacets{Categories: []string{}, Technologies: []string{}, Tags: []string{}}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Project{}).
		Where("is_public = ?", true).
		Distinct("category").
		Order("category").
		Pluck("category", &facets.Categories).Error; err != nil {
		return nil, apperr.Dependency("list project categories", err)
	}
	if err := db.Raw("SELECT DISTINCT t FROM projects, unnest(technologies) AS t WHERE is_public = ? ORDER BY t", true).
		Scan(&facets.Technologies).Error; err != nil {
		return nil, apperr.Dependency("list project technologies", err)
	}
	if err := db.Raw("SELECT DISTINCT t FROM projects, unnest(tags) AS t WHERE is_public = ? ORDER BY t", true).
		Scan(&facets.Tags).Error; err != nil {
		return nil, apperr.Dependency("list project tags", err)
	}

	return &facets, nil
}

func (s *ProjectStore) Recent(ctx context.Context, limit int) ([]models.Project, error) {
	projects := []models.Project{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&projects).Error; err != nil {
		return nil, apperr.Dependency("list recent projects", err)
	}
	return projects, nil
}

func (s *ProjectStore) All(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&projects).Error; err != nil {
		return nil, apperr.Dependency("list projects", err)
	}
	return projects, nil
}
