package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"log"
	"net/http"
	"os"
	"os/signal"
	serverInits "portfolio-backend/app/server/inits"
	"portfolio-backend/app/server/metrics"
	"portfolio-backend/app/server/notify"
	"portfolio-backend/app/worker/handlers"
	"portfolio-backend/app/worker/inits"
	"syscall"
	"time"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化配置
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// 初始化日志
	l, err := serverInits.Logger(!cfg.IsProd, "worker")
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer l.Sync()

	// 切换日志系统
	l.Debug("logger initialized")

	// 初始化 Redis
	rdb, err := serverInits.Redis(cfg.RedisConnectionString)
	if err != nil {
		l.Fatal("error connecting to redis", zap.Error(err))
	}
	defer rdb.Close()

	// 初始化邮件
	mailer, err := notify.NewMailer(cfg.Mail, l)
	if err != nil {
		l.Fatal("error initializing mailer", zap.Error(err))
	}
	if !cfg.Mail.Enabled() {
		l.Warn("mail is not configured, notifications will be dropped")
	}

	// 初始化指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var e *echo.Echo
	if cfg.MetricsListen != "" {
		e = echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
		go func() {
			if err := e.Start(cfg.MetricsListen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	// 开启通知循环
	handlerApp := handlers.NewApp(cfg, l, notify.NewRedisQueue(rdb, cfg.QueueKey), mailer, m)
	handlerApp.Start()
	l.Info("worker started", zap.String("queue", cfg.QueueKey))

	// 等待退出信号
	<-ctx.Done()
	l.Info("shutting down")

	handlerApp.Stop()

	if e != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			l.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}
}
