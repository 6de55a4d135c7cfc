package config

import "time"

type Config struct {
	System struct {
		IsProd                bool     // 是否为生产环境
		Listen                string   // 监听地址
		DBConnectionString    string   // Postgres 数据库的连接字符串
		RedisConnectionString string   // Redis 数据库的连接字符串
		CORSOrigins           []string // 允许跨域访问的前端地址
		InlineNotifyWorker    bool     // 是否在 server 进程内同时运行邮件通知 worker
	}
	Security struct {
		SignatureSecretKey string        // 签名密钥，用于产生签名（例如 JWT ），更新会导致旧有会话失效，但不影响使用
		TokenTTL           time.Duration // 登录令牌有效期
	}
	Mail Mail
}

// Mail 也被 worker 复用
type Mail struct {
	Host         string        // SMTP 服务器地址
	Port         int           // SMTP 服务器端口
	Username     string        // SMTP 用户名
	Password     string        // SMTP 密码
	From         string        // 发件人地址，留空时使用 Username
	AdminAddress string        // 接收新留言通知的地址
	Timeout      time.Duration // 单封邮件的发送超时
}

// Enabled 为 false 时通知会被跳过而非失败
func (m *Mail) Enabled() bool {
	return m.Username != "" && m.Password != "" && m.AdminAddress != ""
}
