package middlewares

import (
	"errors"
	"github.com/labstack/echo/v4"
	"net/http"
	"portfolio-backend/app/server/metrics"
	"time"
)

// Metrics 按路由模板记录请求数量与耗时
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveRequest(c.Request().Method, route, status, time.Since(start))

			return err
		}
	}
}
