package constants

import "time"

const (
	AuthTokenDuration = 7 * 24 * time.Hour

	// 生产环境中签名密钥的最小长度
	SignatureSecretMinLength = 32
)
