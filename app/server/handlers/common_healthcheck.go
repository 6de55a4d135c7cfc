package handlers

import (
	"context"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"sort"
	"time"
)

const healthCheckTimeout = 3 * time.Second

func (a *App) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"timestamp": a.now().UTC(),
	})
}

// AdminHealth 检查各项依赖，任意一项失败时返回 503
func (a *App) AdminHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(a.health))
	for name := range a.health {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "healthy"
	checks := make(map[string]string, len(names))
	for _, name := range names {
		if err := a.health[name](ctx); err != nil {
			a.l.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			checks[name] = "unavailable"
			status = "unhealthy"
			continue
		}
		checks[name] = "ok"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, echo.Map{
		"status":    status,
		"timestamp": a.now().UTC(),
		"uptime":    time.Since(a.started).Round(time.Second).String(),
		"checks":    checks,
	})
}
