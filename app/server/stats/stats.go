// Package stats 统计各个集合的汇总信息。
package stats

import (
	"context"
	"fmt"
	"gorm.io/gorm"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/models"
)

// Breakdown 只包含出现过的分组，不会为缺失的枚举值补零
type Breakdown map[string]int64

type GroupCount struct {
	Key   string
	Count int64
}

func NewBreakdown(rows []GroupCount) Breakdown {
	b := Breakdown{}
	for _, row := range rows {
		if row.Count <= 0 {
			continue
		}
		b[row.Key] += row.Count
	}
	return b
}

type ProjectMetricsSummary struct {
	TotalViews     int64    `json:"totalViews"`
	TotalLikes     int64    `json:"totalLikes"`
	TotalDownloads int64    `json:"totalDownloads"`
	AvgViews       *float64 `json:"avgViews"` // 集合为空时为 null
	AvgLikes       *float64 `json:"avgLikes"`
}

type ProjectReport struct {
	Total        int64                 `json:"total"`
	Featured     int64                 `json:"featured"`
	Public       int64                 `json:"public"`
	ByCategory   Breakdown             `json:"byCategory"`
	ByStatus     Breakdown             `json:"byStatus"`
	ByDifficulty Breakdown             `json:"byDifficulty"`
	Metrics      ProjectMetricsSummary `json:"metrics"`
}

type ContactReport struct {
	Total         int64     `json:"total"`
	New           int64     `json:"new"`
	Spam          int64     `json:"spam"`
	Urgent        int64     `json:"urgent"`
	ByStatus      Breakdown `json:"byStatus"`
	ByPriority    Breakdown `json:"byPriority"`
	ByProjectType Breakdown `json:"byProjectType"`
}

type UserReport struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
	Admins int64 `json:"admins"`
}

type Reporter struct {
	db *gorm.DB
}

func NewReporter(db *gorm.DB) *Reporter {
	return &Reporter{db: db}
}

func (r *Reporter) Projects(ctx context.Context) (*ProjectReport, error) {
	var (
		report ProjectReport
		err    error
	)
	db := r.db.WithContext(ctx)

	if report.Total, err = countWhere[models.Project](db, ""); err != nil {
		return nil, err
	}
	if report.Featured, err = countWhere[models.Project](db, "featured = ?", true); err != nil {
		return nil, err
	}
	if report.Public, err = countWhere[models.Project](db, "is_public = ?", true); err != nil {
		return nil, err
	}
	if report.ByCategory, err = countBy[models.Project](db, "category"); err != nil {
		return nil, err
	}
	if report.ByStatus, err = countBy[models.Project](db, "status"); err != nil {
		return nil, err
	}
	if report.ByDifficulty, err = countBy[models.Project](db, "difficulty"); err != nil {
		return nil, err
	}

	// AVG 在没有记录时返回 NULL
	var sums struct {
		TotalViews     int64
		TotalLikes     int64
		TotalDownloads int64
		AvgViews       *float64
		AvgLikes       *float64
	}
	if err = db.Model(&models.Project{}).
		Select("COALESCE(SUM(metrics_views), 0) AS total_views, " +
			"COALESCE(SUM(metrics_likes), 0) AS total_likes, " +
			"COALESCE(SUM(metrics_downloads), 0) AS total_downloads, " +
			"AVG(metrics_views) AS avg_views, " +
			"AVG(metrics_likes) AS avg_likes").
		Scan(&sums).Error; err != nil {
		return nil, apperr.Dependency("sum project metrics", err)
	}
	report.Metrics = ProjectMetricsSummary(sums)

	return &report, nil
}

func (r *Reporter) Contacts(ctx context.Context) (*ContactReport, error) {
	var (
		report ContactReport
		err    error
	)
	db := r.db.WithContext(ctx)

	if report.Total, err = countWhere[models.Contact](db, ""); err != nil {
		return nil, err
	}
	if report.New, err = countWhere[models.Contact](db, "status = ?", models.ContactStatusNew); err != nil {
		return nil, err
	}
	if report.Spam, err = countWhere[models.Contact](db, "is_spam = ?", true); err != nil {
		return nil, err
	}
	if report.Urgent, err = countWhere[models.Contact](db, "priority = ?", models.PriorityUrgent); err != nil {
		return nil, err
	}
	if report.ByStatus, err = countBy[models.Contact](db, "status"); err != nil {
		return nil, err
	}
	if report.ByPriority, err = countBy[models.Contact](db, "priority"); err != nil {
		return nil, err
	}
	if report.ByProjectType, err = countBy[models.Contact](db, "project_type"); err != nil {
		return nil, err
	}

	return &report, nil
}

func (r *Reporter) Users(ctx context.Context) (*UserReport, error) {
	var (
		report UserReport
		err    error
	)
	db := r.db.WithContext(ctx)

	if report.Total, err = countWhere[models.User](db, ""); err != nil {
		return nil, err
	}
	if report.Active, err = countWhere[models.User](db, "is_active = ?", true); err != nil {
		return nil, err
	}
	if report.Admins, err = countWhere[models.User](db, "role = ?", models.RoleAdmin); err != nil {
		return nil, err
	}

	return &report, nil
}

func countWhere[M models.Project | models.Contact | models.User](db *gorm.DB, cond string, args ...any) (int64, error) {
	var (
		count int64
		model M
	)
	q := db.Model(&model)
	if cond != "" {
		q = q.Where(cond, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, apperr.Dependency(fmt.Sprintf("count %T", model), err)
	}
	return count, nil
}

func countBy[M models.Project | models.Contact | models.User](db *gorm.DB, column string) (Breakdown, error) {
	var (
		rows  []GroupCount
		model M
	)
	if err := db.Model(&model).
		Select(fmt.Sprintf("%s AS key, COUNT(*) AS count", column)).
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, apperr.Dependency(fmt.Sprintf("group %T by %s", model, column), err)
	}
	return NewBreakdown(rows), nil
}
