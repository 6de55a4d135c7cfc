package handlers

import (
	"context"
	"go.uber.org/zap"
	"time"
)

func (a *App) backlog() {
	// 上一次巡检尚未结束时跳过
	if !a.lock.TryLock() {
		return
	}
	defer a.lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	size, err := a.q.Len(ctx)
	if err != nil {
		a.l.Error("failed to read queue length", zap.Error(err))
		return
	}

	if size > a.cfg.BacklogWarnThreshold {
		a.l.Warn("notification backlog is growing", zap.Int64("pending", size), zap.Int64("threshold", a.cfg.BacklogWarnThreshold))
	} else {
		a.l.Debug("notification backlog", zap.Int64("pending", size))
	}
}
