// Package store 基于 gorm 实现各个集合的持久化。
package store

import (
	"errors"
	"gorm.io/gorm"
	"portfolio-backend/app/server/apperr"
)

// adminLockKey 用于串行化所有涉及管理员数量的检查与写入
const adminLockKey int64 = 0x706f7274666f6c69

func lockAdmins(tx *gorm.DB) error {
	if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", adminLockKey).Error; err != nil {
		return apperr.Dependency("acquire admin lock", err)
	}
	return nil
}

// wrap 将 gorm 的错误转为业务错误
func wrap(err error, resource, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource)
	}
	return apperr.Dependency(operation, err)
}

// Mutator 修改已加载的记录，返回错误时不会写入
type Mutator[M any] func(*M) error
