package inits

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"portfolio-backend/app/server/config"
	"portfolio-backend/app/server/constants"
	"strconv"
	"strings"
	"time"
)

// Config 从环境变量中读取配置，当前目录下存在 .env 时会先加载它
func Config() (*config.Config, []string, error) {
	var (
		cfg      config.Config
		warnings []string
	)

	// 已经设置的环境变量优先于 .env
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("failed to load .env: %w", err)
	}

	{
		mode, exist := os.LookupEnv("MODE")
		cfg.System.IsProd = exist && strings.HasPrefix(strings.ToLower(mode), "p")
	}

	if listen, exist := os.LookupEnv("LISTEN"); !exist {
		cfg.System.Listen = ":1323" // 默认监听地址
	} else {
		cfg.System.Listen = listen
	}

	if dbconn, exist := os.LookupEnv("DB_CONN"); !exist {
		return nil, nil, fmt.Errorf("DB_CONN environment variable not set")
	} else {
		cfg.System.DBConnectionString = dbconn
	}

	if redisconn, exist := os.LookupEnv("REDIS_CONN"); !exist {
		return nil, nil, fmt.Errorf("REDIS_CONN environment variable not set")
	} else {
		cfg.System.RedisConnectionString = redisconn
	}

	if origins, exist := os.LookupEnv("CORS_ORIGINS"); !exist {
		cfg.System.CORSOrigins = []string{"http://localhost:5173"}
	} else {
		cfg.System.CORSOrigins = splitList(origins)
	}

	if inline, exist := os.LookupEnv("INLINE_NOTIFY_WORKER"); exist {
		v, err := strconv.ParseBool(inline)
		if err != nil {
			return nil, nil, fmt.Errorf("INLINE_NOTIFY_WORKER should be a boolean")
		}
		cfg.System.InlineNotifyWorker = v
	}

	// 签名密钥：生产环境必须显式配置，开发环境缺省时使用随机密钥
	if sigsk, exist := os.LookupEnv("SIGNATURE_SECRET_KEY"); exist && sigsk != "" {
		if cfg.System.IsProd && len(sigsk) < constants.SignatureSecretMinLength {
			return nil, nil, fmt.Errorf("SIGNATURE_SECRET_KEY should be at least %d bytes", constants.SignatureSecretMinLength)
		}
		cfg.Security.SignatureSecretKey = sigsk
	} else if cfg.System.IsProd {
		return nil, nil, fmt.Errorf("SIGNATURE_SECRET_KEY environment variable not set")
	} else {
		key, err := randomKey()
		if err != nil {
			return nil, nil, err
		}
		cfg.Security.SignatureSecretKey = key
		warnings = append(warnings, "SIGNATURE_SECRET_KEY not set, using a random key, sessions will not survive a restart")
	}

	if ttl, err := durationEnv("TOKEN_TTL", constants.AuthTokenDuration); err != nil {
		return nil, nil, err
	} else {
		cfg.Security.TokenTTL = ttl
	}

	mail, err := MailConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg.Mail = *mail

	return &cfg, warnings, nil
}

// MailConfig 也被 worker 使用
func MailConfig() (*config.Mail, error) {
	var cfg config.Mail

	if host, exist := os.LookupEnv("SMTP_HOST"); !exist {
		cfg.Host = "smtp.gmail.com"
	} else {
		cfg.Host = host
	}

	if portStr, exist := os.LookupEnv("SMTP_PORT"); !exist {
		cfg.Port = 587
	} else if port, err := strconv.Atoi(portStr); err != nil {
		return nil, fmt.Errorf("SMTP_PORT should be an integer")
	} else {
		cfg.Port = port
	}

	cfg.Username = os.Getenv("SMTP_USER")
	cfg.Password = os.Getenv("SMTP_PASS")
	cfg.AdminAddress = os.Getenv("ADMIN_EMAIL")

	if from, exist := os.LookupEnv("MAIL_FROM"); exist {
		cfg.From = from
	} else {
		cfg.From = cfg.Username
	}

	timeout, err := durationEnv("MAIL_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.Timeout = timeout

	return &cfg, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw, exist := os.LookupEnv(key)
	if !exist {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s should be a valid duration", key)
	}
	return d, nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func randomKey() (string, error) {
	buf := make([]byte, constants.SignatureSecretMinLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate signature key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
