package auth

import (
	"fmt"
	"github.com/alexedwards/argon2id"
)

// PasswordHasher 负责密码的单向哈希与校验
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

type Argon2idHasher struct {
	params *argon2id.Params
}

// NewArgon2idHasher 在 params 为 nil 时使用默认参数
func NewArgon2idHasher(params *argon2id.Params) *Argon2idHasher {
	if params == nil {
		params = argon2id.DefaultParams
	}
	return &Argon2idHasher{params: params}
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, h.params)
	if err != nil {
		return "", fmt.Errorf("create hash: %w", err)
	}
	return hash, nil
}

func (h *Argon2idHasher) Verify(password, hash string) (bool, error) {
	match, _, err := argon2id.CheckHash(password, hash)
	if err != nil {
		return false, fmt.Errorf("check hash: %w", err)
	}
	return match, nil
}
