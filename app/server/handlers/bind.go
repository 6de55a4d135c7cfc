package handlers

import (
	"encoding/json"
	"errors"
	"github.com/labstack/echo/v4"
	"io"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/utils"
)

// bind 严格解析 JSON 请求体：未知字段与多余内容都会被拒绝，随后执行校验
func (a *App) bind(c echo.Context, req any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(req); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required", nil)
		}

		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Validation("invalid request body", map[string]string{
				typeErr.Field: "has the wrong type",
			})
		}
		return apperr.Validation("invalid request body", map[string]string{
			"body": err.Error(),
		})
	}
	if dec.More() {
		return apperr.Validation("invalid request body", map[string]string{
			"body": "unexpected data after JSON object",
		})
	}

	return c.Validate(req)
}

// bindQuery 绑定查询参数并执行校验
func (a *App) bindQuery(c echo.Context, req any) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, req); err != nil {
		return apperr.Validation("invalid query parameters", nil)
	}
	return c.Validate(req)
}

// pathID 解析路径参数 :id
func (a *App) pathID(c echo.Context) (uint, error) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		return 0, apperr.Validation("invalid id", map[string]string{"id": "must be a positive integer"})
	}
	return id, nil
}
