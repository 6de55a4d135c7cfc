package inits

import (
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"portfolio-backend/app/server/constants"
	serverInits "portfolio-backend/app/server/inits"
	"portfolio-backend/app/worker/config"
	"strconv"
	"strings"
	"time"
)

func Config() (*config.Config, error) {
	var cfg config.Config

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	{
		mode, exist := os.LookupEnv("MODE")
		cfg.IsProd = exist && strings.HasPrefix(strings.ToLower(mode), "p")
	}

	cfg.MetricsListen = os.Getenv("METRICS_LISTEN")

	if redisConn, exist := os.LookupEnv("REDIS_CONN"); !exist {
		return nil, fmt.Errorf("REDIS_CONN environment variable not set")
	} else {
		cfg.RedisConnectionString = redisConn
	}

	if key, exist := os.LookupEnv("QUEUE_KEY"); !exist {
		cfg.QueueKey = constants.QueueKeyContactNotification
	} else {
		cfg.QueueKey = key
	}

	if popTimeoutStr, exist := os.LookupEnv("POP_TIMEOUT"); !exist {
		cfg.PopTimeout = constants.NotifyPopTimeout
	} else if timeout, err := time.ParseDuration(popTimeoutStr); err != nil || timeout <= 0 {
		return nil, fmt.Errorf("POP_TIMEOUT should be a valid duration")
	} else {
		cfg.PopTimeout = timeout
	}

	if intervalStr, exist := os.LookupEnv("BACKLOG_INTERVAL"); !exist {
		cfg.BacklogInterval = 1 * time.Minute // 默认每分钟一次
	} else if interval, err := time.ParseDuration(intervalStr); err != nil || interval <= 0 {
		return nil, fmt.Errorf("BACKLOG_INTERVAL should be a valid duration")
	} else {
		cfg.BacklogInterval = interval
	}

	if thresholdStr, exist := os.LookupEnv("BACKLOG_WARN_THRESHOLD"); !exist {
		cfg.BacklogWarnThreshold = 100
	} else if threshold, err := strconv.ParseInt(thresholdStr, 10, 64); err != nil || threshold < 0 {
		return nil, fmt.Errorf("BACKLOG_WARN_THRESHOLD should be a non-negative integer")
	} else {
		cfg.BacklogWarnThreshold = threshold
	}

	mail, err := serverInits.MailConfig()
	if err != nil {
		return nil, err
	}
	cfg.Mail = mail

	return &cfg, nil
}
