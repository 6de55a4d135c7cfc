package handlers

import (
	"context"
	"go.uber.org/zap"
	"portfolio-backend/app/server/auth"
	"portfolio-backend/app/server/metrics"
	"portfolio-backend/app/server/models"
	"portfolio-backend/app/server/query"
	"portfolio-backend/app/server/stats"
	"portfolio-backend/app/server/store"
	"time"
)

type ProjectRepository interface {
	List(ctx context.Context, f store.ProjectFilter, p query.Params) ([]models.Project, query.Pagination, error)
	Get(ctx context.Context, id uint) (*models.Project, error)
	View(ctx context.Context, id uint) (*models.Project, error)
	Like(ctx context.Context, id uint) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, id uint, mutate store.Mutator[models.Project]) (*models.Project, error)
	Delete(ctx context.Context, id uint) error
	Featured(ctx context.Context, limit int) ([]models.Project, error)
	Search(ctx context.Context, term string, f store.ProjectFilter, limit int) ([]models.Project, error)
	Facets(ctx context.Context) (*store.ProjectFacets, error)
	Recent(ctx context.Context, limit int) ([]models.Project, error)
	All(ctx context.Context) ([]models.Project, error)
}

type ContactRepository interface {
	List(ctx context.Context, f store.ContactFilter, p query.Params) ([]models.Contact, query.Pagination, error)
	Create(ctx context.Context, contact *models.Contact) error
	Get(ctx context.Context, id uint) (*models.Contact, error)
	Update(ctx context.Context, id uint, mutate store.Mutator[models.Contact]) (*models.Contact, error)
	MarkSpam(ctx context.Context, id uint) (*models.Contact, error)
	Delete(ctx context.Context, id uint) error
	Recent(ctx context.Context, limit int) ([]models.Contact, error)
	All(ctx context.Context) ([]models.Contact, error)
}

type UserRepository interface {
	List(ctx context.Context, f store.UserFilter, p query.Params) ([]models.User, query.Pagination, error)
	All(ctx context.Context) ([]models.User, error)
}

type Reporter interface {
	Projects(ctx context.Context) (*stats.ProjectReport, error)
	Contacts(ctx context.Context) (*stats.ContactReport, error)
	Users(ctx context.Context) (*stats.UserReport, error)
}

// Notifier 不能阻塞请求，也不能返回错误
type Notifier interface {
	ContactSubmitted(contact *models.Contact)
}

// HealthCheck 返回 nil 表示依赖正常
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Auth     *auth.Service
	Users    UserRepository
	Projects ProjectRepository
	Contacts ContactRepository
	Reporter Reporter
	Notifier Notifier
	Metrics  *metrics.Metrics
	Health   map[string]HealthCheck
}

type App struct {
	l        *zap.Logger            // 日志
	auth     *auth.Service          // 认证与账号管理
	users    UserRepository         // 用户
	projects ProjectRepository      // 项目
	contacts ContactRepository      // 联系表单
	reporter Reporter               // 统计
	notifier Notifier               // 新消息通知
	m        *metrics.Metrics       // 监控指标
	health   map[string]HealthCheck // 依赖健康检查
	started  time.Time              // 启动时间
	now      func() time.Time
}

func NewApp(l *zap.Logger, deps Deps) *App {
	return &App{
		l:        l,
		auth:     deps.Auth,
		users:    deps.Users,
		projects: deps.Projects,
		contacts: deps.Contacts,
		reporter: deps.Reporter,
		notifier: deps.Notifier,
		m:        deps.Metrics,
		health:   deps.Health,
		started:  time.Now(),
		now:      time.Now,
	}
}
