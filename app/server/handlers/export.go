package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"github.com/labstack/echo/v4"
	"net/http"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/models"
	"strconv"
	"strings"
	"time"
)

const (
	exportProjects = "projects"
	exportContacts = "contacts"
	exportUsers    = "users"
)

type exportQuery struct {
	Format string `query:"format" validate:"omitempty,oneof=json csv"`
}

// table 是 CSV 导出的中间格式
type table struct {
	header []string
	rows   [][]string
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func projectTable(projects []models.Project) table {
	t := table{header: []string{
		"id", "title", "category", "status", "difficulty", "technologies", "tags",
		"featured", "isPublic", "order", "views", "likes", "downloads", "liveUrl", "githubUrl", "createdAt",
	}}
	for _, p := range projects {
		t.rows = append(t.rows, []string{
			strconv.FormatUint(uint64(p.ID), 10), p.Title, string(p.Category), string(p.Status), string(p.Difficulty),
			strings.Join(p.Technologies, ";"), strings.Join(p.Tags, ";"),
			strconv.FormatBool(p.Featured), strconv.FormatBool(p.IsPublic), strconv.Itoa(p.Order),
			strconv.FormatInt(p.Metrics.Views, 10), strconv.FormatInt(p.Metrics.Likes, 10), strconv.FormatInt(p.Metrics.Downloads, 10),
			p.LiveURL, p.GithubURL, formatTime(&p.CreatedAt),
		})
	}
	return t
}

func contactTable(contacts []models.Contact) table {
	t := table{header: []string{
		"id", "name", "email", "subject", "message", "phone", "company", "projectType", "budget", "timeline",
		"status", "priority", "isSpam", "tags", "createdAt",
	}}
	for _, ct := range contacts {
		t.rows = append(t.rows, []string{
			strconv.FormatUint(uint64(ct.ID), 10), ct.Name, ct.Email, ct.Subject, ct.Message, ct.Phone, ct.Company,
			string(ct.ProjectType), ct.Budget, ct.Timeline, string(ct.Status), string(ct.Priority),
			strconv.FormatBool(ct.IsSpam), strings.Join(ct.Tags, ";"), formatTime(&ct.CreatedAt),
		})
	}
	return t
}

func userTable(users []models.UserView) table {
	t := table{header: []string{"id", "username", "email", "role", "isActive", "lastLogin", "createdAt"}}
	for _, u := range users {
		t.rows = append(t.rows, []string{
			strconv.FormatUint(uint64(u.ID), 10), u.Username, u.Email, string(u.Role),
			strconv.FormatBool(u.IsActive), formatTime(u.LastLogin), formatTime(&u.CreatedAt),
		})
	}
	return t
}

func (t table) csv() ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	w := csv.NewWriter(buf)
	if err := w.Write(t.header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(t.rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AdminExport 导出全部数据，用户数据不包含密码
func (a *App) AdminExport(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定查询参数
	var q exportQuery
	if err := a.bindQuery(c, &q); err != nil {
		return a.fail(c, "failed to bind query", err)
	}

	var (
		data any
		tbl  table
	)
	kind := c.Param("type")
	switch kind {
	case exportProjects:
		projects, err := a.projects.All(rctx)
		if err != nil {
			return a.fail(c, "failed to export projects", err)
		}
		data, tbl = projects, projectTable(projects)
	case exportContacts:
		contacts, err := a.contacts.All(rctx)
		if err != nil {
			return a.fail(c, "failed to export contacts", err)
		}
		data, tbl = contacts, contactTable(contacts)
	case exportUsers:
		users, err := a.users.All(rctx)
		if err != nil {
			return a.fail(c, "failed to export users", err)
		}
		views := models.UserViews(users)
		data, tbl = views, userTable(views)
	default:
		return a.fail(c, "invalid export type", apperr.Validation("invalid export type", map[string]string{
			"type": "must be one of: projects, contacts, users",
		}))
	}

	filename := fmt.Sprintf("%s-%s", kind, a.now().UTC().Format(time.DateOnly))

	if q.Format == "csv" {
		body, err := tbl.csv()
		if err != nil {
			return a.fail(c, "failed to encode csv", apperr.Dependency("encode csv", err))
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.csv"`, filename))
		return c.Blob(http.StatusOK, "text/csv; charset=utf-8", body)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.json"`, filename))
	return c.JSON(http.StatusOK, data)
}
