// Package query 实现列表接口共用的过滤、排序与分页逻辑。
package query

import (
	"context"
	"fmt"
	"gorm.io/gorm"
	"math"
	"portfolio-backend/app/server/apperr"
	"sort"
	"strings"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Spec 描述一种资源允许的排序字段、分页范围与搜索字段
type Spec struct {
	SortFields    map[string]string // 对外字段名 -> 数据库列
	DefaultSort   string
	DefaultOrder  Order
	DefaultLimit  int
	MaxLimit      int
	SearchColumns []string // 参与全文搜索的 SQL 表达式
}

// Request 是调用方传入的原始参数，零值表示未提供
type Request struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
}

// Params 是校验并规范化后的参数
type Params struct {
	Page       int
	Limit      int
	SortColumn string
	Order      Order
	Search     string
}

// Offset 在页码过大时饱和为 math.MaxInt64，不会溢出为负数
func (p Params) Offset() int64 {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	pages, limit := int64(p.Page-1), int64(p.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

func (s Spec) Normalize(r Request) (Params, error) {
	fields := map[string]string{}

	// 页码
	page := r.Page
	if page == 0 {
		page = 1
	} else if page < 1 {
		fields["page"] = "must be a positive integer"
	}

	// 每页数量，超过上限时截断而非拒绝
	limit := r.Limit
	if limit <= 0 {
		limit = s.DefaultLimit
	}
	if s.MaxLimit > 0 && limit > s.MaxLimit {
		limit = s.MaxLimit
	}

	// 排序
	sortBy := r.SortBy
	if sortBy == "" {
		sortBy = s.DefaultSort
	}
	column, ok := s.SortFields[sortBy]
	if !ok {
		fields["sortBy"] = "must be one of " + strings.Join(s.sortNames(), ", ")
	}

	order := s.DefaultOrder
	switch Order(strings.ToLower(r.SortOrder)) {
	case "":
	case Asc:
		order = Asc
	case Desc:
		order = Desc
	default:
		fields["sortOrder"] = "must be asc or desc"
	}

	if len(fields) > 0 {
		return Params{}, apperr.Validation("invalid query parameters", fields)
	}

	return Params{
		Page:       page,
		Limit:      limit,
		SortColumn: column,
		Order:      order,
		Search:     strings.TrimSpace(r.Search),
	}, nil
}

func (s Spec) sortNames() []string {
	names := make([]string, 0, len(s.SortFields))
	for name := range s.SortFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pagination 是所有列表接口共用的分页信息
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

func NewPagination(page, limit int, total int64) Pagination {
	if limit <= 0 {
		return Pagination{CurrentPage: page, TotalItems: total}
	}
	pageMax := total / int64(limit)
	if (total % int64(limit)) != 0 {
		pageMax++
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   int(pageMax),
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}

// Scope 是对查询的附加条件，只能收窄结果
type Scope = func(*gorm.DB) *gorm.DB

// Eq 在 value 非空时追加等值条件
func Eq[T comparable](column string, value *T) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if value == nil {
			return db
		}
		return db.Where(fmt.Sprintf("%s = ?", column), *value)
	}
}

// Contains 在 value 非空时要求数组列包含该值
func Contains(column string, value *string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if value == nil || *value == "" {
			return db
		}
		return db.Where(fmt.Sprintf("? = ANY(%s)", column), *value)
	}
}

// Search 在任一搜索字段中进行大小写不敏感的子串匹配
func Search(columns []string, term string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + EscapeLike(term) + "%"
		conds := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, column := range columns {
			conds = append(conds, fmt.Sprintf("%s ILIKE ?", column))
			args = append(args, pattern)
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// EscapeLike 转义 LIKE 模式中的通配符
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Sorted 按指定列排序，并以创建时间与 ID 作为稳定的次级排序
func Sorted(p Params) Scope {
	return func(db *gorm.DB) *gorm.DB {
		dir := "ASC"
		if p.Order == Desc {
			dir = "DESC"
		}
		db = db.Order(fmt.Sprintf("%s %s", p.SortColumn, dir))
		if p.SortColumn != "created_at" {
			db = db.Order("created_at ASC")
		}
		return db.Order("id ASC")
	}
}

func Paged(p Params) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Limit(p.Limit).Offset(int(p.Offset()))
	}
}

// Find 返回符合条件的一页记录以及分页信息，页码超出范围时返回空列表
func Find[T any](ctx context.Context, db *gorm.DB, spec Spec, p Params, scopes ...Scope) ([]T, Pagination, error) {
	var (
		model T
		count int64
		items = []T{}
	)

	base := db.WithContext(ctx).Model(&model).Scopes(scopes...).Scopes(Search(spec.SearchColumns, p.Search))

	if err := base.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, Pagination{}, apperr.Dependency("count records", err)
	}

	// 超出最后一页时不再查询
	if p.Offset() < count {
		if err := base.Session(&gorm.Session{}).Scopes(Sorted(p), Paged(p)).Find(&items).Error; err != nil {
			return nil, Pagination{}, apperr.Dependency("find records", err)
		}
	}

	return items, NewPagination(p.Page, p.Limit, count), nil
}
