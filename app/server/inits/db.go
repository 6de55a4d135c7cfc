package inits

import (
	"fmt"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"portfolio-backend/app/server/models"
	"time"
)

func DB(conn string, l *zap.Logger, debugMode bool) (db *gorm.DB, err error) {
	logLevel := logger.Warn
	if debugMode {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		TranslateError: true, // 唯一约束冲突转为 gorm.ErrDuplicatedKey
		Logger: logger.New(zapWriter{l: l.Sugar()}, logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
	}

	// 打开连接
	if db, err = gorm.Open(postgres.Open(conn), gormCfg); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 迁移
	if err = Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// 返回
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Contact{},
	)
}

// zapWriter 让 gorm 的日志也走 zap
type zapWriter struct {
	l *zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.l.Infof(format, args...)
}
