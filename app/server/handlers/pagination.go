package handlers

import (
	"portfolio-backend/app/server/query"
)

// PageQuery 是列表接口共用的分页、排序与搜索参数
type PageQuery struct {
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"`
	Search    string `query:"search"`
}

func (q PageQuery) params(spec query.Spec) (query.Params, error) {
	return spec.Normalize(query.Request{
		Page:      q.Page,
		Limit:     q.Limit,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Search:    q.Search,
	})
}

// optional 把空字符串视为未提供
func optional[T ~string](v string) *T {
	if v == "" {
		return nil
	}
	t := T(v)
	return &t
}

// optionalBool 只接受 "true" / "false"，其余值在校验阶段已被拒绝
func optionalBool(v string) *bool {
	switch v {
	case "true":
		b := true
		return &b
	case "false":
		b := false
		return &b
	default:
		return nil
	}
}
