package config

import (
	serverConfig "portfolio-backend/app/server/config"
	"time"
)

type Config struct {
	// 基础配置
	IsProd        bool
	MetricsListen string // 留空时不暴露指标

	// 队列配置
	RedisConnectionString string
	QueueKey              string
	PopTimeout            time.Duration
	BacklogInterval       time.Duration // 队列积压巡检间隔
	BacklogWarnThreshold  int64

	// 邮件配置，与 server 共用
	Mail *serverConfig.Mail
}
