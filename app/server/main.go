package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"log"
	"net/http"
	"os"
	"os/signal"
	"portfolio-backend/app/server/apidocs"
	"portfolio-backend/app/server/auth"
	"portfolio-backend/app/server/constants"
	"portfolio-backend/app/server/handlers"
	"portfolio-backend/app/server/inits"
	"portfolio-backend/app/server/jwt"
	"portfolio-backend/app/server/metrics"
	"portfolio-backend/app/server/middlewares"
	"portfolio-backend/app/server/notify"
	"portfolio-backend/app/server/stats"
	"portfolio-backend/app/server/store"
	"syscall"
	"time"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "server",
		Short:        "Portfolio API server",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	})
	root.AddCommand(newSeedCmd())

	return root
}

func newSeedCmd() *cobra.Command {
	var opts inits.SeedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the first admin and sample projects when the database is empty",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.AdminPassword == "" {
				opts.AdminPassword = os.Getenv("SEED_ADMIN_PASSWORD")
			}
			return seed(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.AdminUsername, "username", "admin", "admin username")
	cmd.Flags().StringVar(&opts.AdminEmail, "email", "admin@example.com", "admin email")
	cmd.Flags().StringVar(&opts.AdminPassword, "password", "", "admin password (defaults to $SEED_ADMIN_PASSWORD)")
	cmd.Flags().BoolVar(&opts.Projects, "projects", true, "also insert sample projects")

	return cmd
}

func seed(ctx context.Context, opts inits.SeedOptions) error {
	// 初始化配置
	cfg, _, err := inits.Config()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.System.IsProd, "seed")
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	// 初始化数据库连接，同时完成迁移
	db, err := inits.DB(cfg.System.DBConnectionString, l, !cfg.System.IsProd)
	if err != nil {
		return fmt.Errorf("error initializing DB connection: %w", err)
	}

	return inits.Seed(ctx, db, auth.NewArgon2idHasher(nil), l, opts)
}

func serve(ctx context.Context) error {
	// 初始化配置
	cfg, warnings, err := inits.Config()
	if err != nil {
		log.Print(fmt.Errorf("error loading config: %w", err))
		return err
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.System.IsProd, "server")
	if err != nil {
		log.Print(fmt.Errorf("error initializing logger: %w", err))
		return err
	}
	defer func() { _ = l.Sync() }()

	// 切换日志系统
	l.Debug("logger initialized")
	for _, w := range warnings {
		l.Warn(w)
	}

	// 初始化数据库连接，同时完成迁移
	db, err := inits.DB(cfg.System.DBConnectionString, l, !cfg.System.IsProd)
	if err != nil {
		l.Error("error initializing DB connection", zap.Error(err))
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		l.Error("error getting DB handle", zap.Error(err))
		return err
	}

	// 初始化 redis 连接
	rdb, err := inits.Redis(cfg.System.RedisConnectionString)
	if err != nil {
		l.Error("error initializing Redis connection", zap.Error(err))
		return err
	}
	defer func() { _ = rdb.Close() }()

	// 初始化 JWT
	j, err := jwt.New(cfg.Security.SignatureSecretKey)
	if err != nil {
		l.Error("error initializing JWT", zap.Error(err))
		return err
	}

	// 初始化认证服务
	users := store.NewUserStore(db)
	authSvc, err := auth.NewService(l.Named("auth"), users, auth.NewArgon2idHasher(nil), j, cfg.Security.TokenTTL)
	if err != nil {
		l.Error("error initializing auth service", zap.Error(err))
		return err
	}

	// 初始化监控指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// 初始化通知队列
	queue := notify.NewRedisQueue(rdb, constants.QueueKeyContactNotification)
	dispatcher := notify.NewDispatcher(l.Named("notify"), queue, m, constants.NotifyEnqueueTimeout)
	defer dispatcher.Close()

	if cfg.System.InlineNotifyWorker {
		mailer, err := notify.NewMailer(&cfg.Mail, l)
		if err != nil {
			l.Error("error initializing mailer", zap.Error(err))
			return err
		}
		worker := notify.NewWorker(l.Named("worker"), queue, mailer, m, notify.WorkerOptions{
			To:          cfg.Mail.AdminAddress,
			PopTimeout:  constants.NotifyPopTimeout,
			SendTimeout: cfg.Mail.Timeout,
		})
		worker.Start()
		defer worker.Stop()
	}

	// 准备 handler app
	handlerApp := handlers.NewApp(l, handlers.Deps{
		Auth:     authSvc,
		Users:    users,
		Projects: store.NewProjectStore(db),
		Contacts: store.NewContactStore(db),
		Reporter: stats.NewReporter(db),
		Notifier: dispatcher,
		Metrics:  m,
		Health: map[string]handlers.HealthCheck{
			"database": sqlDB.PingContext,
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		},
	})

	// 准备 echo 服务
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info("request",
				zap.String("method", v.Method),
				zap.String("URI", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.System.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit("10M"))
	e.Use(middleware.Secure())
	e.Use(middlewares.Metrics(m))

	// 绑定 echo 服务
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	handlerApp.Register(e)

	// 添加 API 文档
	if !cfg.System.IsProd {
		if spec, err := apidocs.Spec(ctx); err != nil {
			l.Error("error initializing openapi document", zap.Error(err))
		} else {
			e.Pre(apidocs.Doc("/api/docs", spec, apidocs.WithTitle("Portfolio API")))
		}
	}

	// 启动 echo 服务
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(cfg.System.Listen)
	}()

	select {
	case err = <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			l.Error("shutting down the server", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		l.Info("shutting down the server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = e.Shutdown(shutdownCtx); err != nil {
		l.Error("error shutting down the server", zap.Error(err))
		return err
	}

	return nil
}
