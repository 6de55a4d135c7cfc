package handlers

import (
	"context"
	"go.uber.org/zap"
	"portfolio-backend/app/server/metrics"
	"portfolio-backend/app/server/notify"
	"portfolio-backend/app/worker/config"
	"sync"
	"time"
)

// Queue 同时用于消费任务和巡检积压
type Queue interface {
	notify.Queue
	Len(ctx context.Context) (int64, error)
}

type App struct {
	cfg    *config.Config
	l      *zap.Logger
	q      Queue
	worker *notify.Worker

	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
	lock     sync.Mutex
}

func NewApp(cfg *config.Config, l *zap.Logger, q Queue, mailer notify.Mailer, m *metrics.Metrics) *App {
	return &App{
		cfg: cfg,
		l:   l,
		q:   q,
		worker: notify.NewWorker(l, q, mailer, m, notify.WorkerOptions{
			To:          cfg.Mail.AdminAddress,
			PopTimeout:  cfg.PopTimeout,
			SendTimeout: cfg.Mail.Timeout,
		}),
	}
}

func (a *App) Start() {
	a.worker.Start()

	a.ticker = time.NewTicker(a.cfg.BacklogInterval)
	a.stopChan = make(chan struct{})
	a.done = make(chan struct{})
	go a.loop()
}

func (a *App) loop() {
	defer close(a.done)

	for {
		select {
		case <-a.ticker.C:
			a.l.Debug("backlog loop")
			a.backlog()
		case <-a.stopChan:
			a.l.Debug("stop backlog loop")
			return
		}
	}
}

// Stop 等待正在发送的邮件结束后返回
func (a *App) Stop() {
	a.ticker.Stop()
	close(a.stopChan)
	<-a.done

	a.worker.Stop()
}
