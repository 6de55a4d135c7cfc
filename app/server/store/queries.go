package store

import (
	"portfolio-backend/app/server/constants"
	"portfolio-backend/app/server/query"
)

var ProjectQuery = query.Spec{
	SortFields: map[string]string{
		"title":      "title",
		"createdAt":  "created_at",
		"updatedAt":  "updated_at",
		"order":      "sort_order",
		"difficulty": "difficulty",
		"views":      "metrics_views",
	},
	DefaultSort:   "createdAt",
	DefaultOrder:  query.Desc,
	DefaultLimit:  constants.QueryDefaultLimitProjects,
	MaxLimit:      constants.QueryMaxLimit,
	SearchColumns: []string{"title", "description", "array_to_string(tags, ' ')"},
}

var ContactQuery = query.Spec{
	SortFields: map[string]string{
		"createdAt": "created_at",
		"updatedAt": "updated_at",
		"name":      "name",
		"email":     "email",
		"status":    "status",
		"priority":  "priority",
	},
	DefaultSort:   "createdAt",
	DefaultOrder:  query.Desc,
	DefaultLimit:  constants.QueryDefaultLimitContacts,
	MaxLimit:      constants.QueryMaxLimit,
	SearchColumns: []string{"name", "email", "subject", "message", "company"},
}

var UserQuery = query.Spec{
	SortFields: map[string]string{
		"createdAt": "created_at",
		"username":  "username",
		"email":     "email",
		"lastLogin": "last_login",
	},
	DefaultSort:   "createdAt",
	DefaultOrder:  query.Desc,
	DefaultLimit:  constants.QueryDefaultLimitUsers,
	MaxLimit:      constants.QueryMaxLimit,
	SearchColumns: []string{"username", "email"},
}
