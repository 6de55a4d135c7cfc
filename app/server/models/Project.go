package models

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
	"math"
	"time"
)

type ProjectCategory string

const (
	ProjectCategoryFrontend  ProjectCategory = "frontend"
	ProjectCategoryBackend   ProjectCategory = "backend"
	ProjectCategoryFullstack ProjectCategory = "fullstack"
	ProjectCategoryMobile    ProjectCategory = "mobile"
	ProjectCategoryAI        ProjectCategory = "ai"
	ProjectCategoryOther     ProjectCategory = "other"
)

type ProjectStatus string

const (
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusInProgress ProjectStatus = "in-progress"
	ProjectStatusPlanned    ProjectStatus = "planned"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// ProjectMetrics 只会单调递增
type ProjectMetrics struct {
	Views     int64 `gorm:"column:views;not null;default:0" json:"views"`
	Likes     int64 `gorm:"column:likes;not null;default:0" json:"likes"`
	Downloads int64 `gorm:"column:downloads;not null;default:0" json:"downloads"`
}

type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 展示内容
	Title            string         `gorm:"column:title" json:"title"`
	Description      string         `gorm:"column:description" json:"description"`
	ShortDescription string         `gorm:"column:short_description" json:"shortDescription"`
	Technologies     pq.StringArray `gorm:"column:technologies;type:text[]" json:"technologies"`
	Image            string         `gorm:"column:image" json:"image"`
	Images           pq.StringArray `gorm:"column:images;type:text[]" json:"images"`
	LiveURL          string         `gorm:"column:live_url" json:"liveUrl,omitempty"`
	GithubURL        string         `gorm:"column:github_url" json:"githubUrl,omitempty"`
	Tags             pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`
	Highlights       pq.StringArray `gorm:"column:highlights;type:text[]" json:"highlights"`
	Challenges       pq.StringArray `gorm:"column:challenges;type:text[]" json:"challenges"`
	Solutions        pq.StringArray `gorm:"column:solutions;type:text[]" json:"solutions"`

	// 分类与状态
	Category   ProjectCategory `gorm:"column:category;index" json:"category"`
	Status     ProjectStatus   `gorm:"column:status;index" json:"status"`
	Difficulty Difficulty      `gorm:"column:difficulty" json:"difficulty"`
	Featured   bool            `gorm:"column:featured;index" json:"featured"`
	IsPublic   bool            `gorm:"column:is_public;index" json:"isPublic"` // 不公开的项目不会出现在公开接口中
	Order      int             `gorm:"column:sort_order" json:"order"`         // 排序权重，越小越靠前

	StartDate *time.Time `gorm:"column:start_date" json:"startDate,omitempty"`
	EndDate   *time.Time `gorm:"column:end_date" json:"endDate,omitempty"`

	Metrics ProjectMetrics `gorm:"embedded;embeddedPrefix:metrics_" json:"metrics"`

	// 派生字段，不入库
	Duration *int `gorm:"-" json:"duration,omitempty"` // 项目持续天数
}

func (p *Project) AfterFind(*gorm.DB) error {
	p.fillDerived()
	return nil
}

func (p *Project) AfterSave(*gorm.DB) error {
	p.fillDerived()
	return nil
}

func (p *Project) fillDerived() {
	p.Duration = DurationDays(p.StartDate, p.EndDate)
}

// DurationDays 按整天向上取整，任一端缺失时返回 nil
func DurationDays(start, end *time.Time) *int {
	if start == nil || end == nil {
		return nil
	}
	days := int(math.Ceil(math.Abs(end.Sub(*start).Hours()) / 24))
	return &days
}

// DefaultShortDescription 截取描述的前若干个字符作为简介
func DefaultShortDescription(description string, maxLen int) string {
	runes := []rune(description)
	if len(runes) <= maxLen {
		return description
	}
	return string(runes[:maxLen])
}
