package store

import (
	"context"
	"errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/auth"
	"portfolio-backend/app/server/models"
	"portfolio-backend/app/server/query"
	"strings"
	"time"
)

type UserStore struct {
	db *gorm.DB
}

var _ auth.UserStore = (*UserStore)(nil)

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

type UserFilter struct {
	Role     *models.Role
	IsActive *bool
}

func (s *UserStore) List(ctx context.Context, f UserFilter, p query.Params) ([]models.User, query.Pagination, error) {
	return query.Find[models.User](ctx, s.db, UserQuery, p,
		query.Eq("role", f.Role),
		query.Eq("is_active", f.IsActive),
	)
}

func (s *UserStore) All(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperr.Dependency("list users", err)
	}
	return users, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "user", "find user")
	}
	return &user, nil
}

// FindByIdentity 包含 @ 时按邮箱查找，否则按用户名查找
func (s *UserStore) FindByIdentity(ctx context.Context, identity string) (*models.User, error) {
	var (
		user models.User
		q    = s.db.WithContext(ctx)
	)
	if strings.Contains(identity, "@") {
		q = q.Where("email = ?", auth.NormalizeEmail(identity))
	} else {
		q = q.Where("username = ?", identity)
	}
	if err := q.First(&user).Error; err != nil {
		return nil, wrap(err, "user", "find user")
	}
	return &user, nil
}

func (s *UserStore) AdminExists(ctx context.Context) (bool, error) {
	count, err := countAdmins(s.db.WithContext(ctx))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *UserStore) FirstAdmin(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("role = ?", models.RoleAdmin).Order("id ASC").First(&user).Error; err != nil {
		return nil, wrap(err, "admin user", "find admin user")
	}
	return &user, nil
}

func (s *UserStore) CreateFirstAdmin(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAdmins(tx); err != nil {
			return err
		}

		admins, err := countAdmins(tx)
		if err != nil {
			return err
		}

		var taken int64
		if err = tx.Model(&models.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&taken).Error; err != nil {
			return apperr.Dependency("count users by identity", err)
		}

		if err = auth.CheckFirstAdmin(admins > 0, taken > 0); err != nil {
			return err
		}

		if err = tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return auth.ErrIdentityTaken()
			}
			return apperr.Dependency("create admin user", err)
		}
		return nil
	})
}

func (s *UserStore) RecordLogin(ctx context.Context, id uint, at time.Time) error {
	return s.updateColumn(ctx, id, "last_login", at)
}

func (s *UserStore) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updateColumn(ctx, id, "password", hash)
}

func (s *UserStore) UpdateProfile(ctx context.Context, id uint, profile models.Profile) error {
	return s.updateColumn(ctx, id, "profile", datatypes.NewJSONType(profile))
}

func (s *UserStore) updateColumn(ctx context.Context, id uint, column string, value any) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return apperr.Dependency("update user "+column, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (s *UserStore) UpdateAccount(ctx context.Context, id uint, patch auth.AccountPatch) (*models.User, error) {
	var updated models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAdmins(tx); err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return wrap(err, "user", "find user")
		}

		admins, err := countAdmins(tx)
		if err != nil {
			return err
		}
		if err = auth.CheckAccountPatch(&user, &patch, admins); err != nil {
			return err
		}

		updated = patch.Apply(user)
		if err = tx.Model(&updated).Select("role", "is_active", "profile", "updated_at").Updates(&updated).Error; err != nil {
			return apperr.Dependency("update user", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete 与管理员数量检查在同一个事务中完成
func (s *UserStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAdmins(tx); err != nil {
			return err
		}

		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return wrap(err, "user", "find user")
		}

		admins, err := countAdmins(tx)
		if err != nil {
			return err
		}
		if err = auth.CheckDeletion(&user, admins); err != nil {
			return err
		}

		if err = tx.Delete(&models.User{}, id).Error; err != nil {
			return apperr.Dependency("delete user", err)
		}
		return nil
	})
}

func countAdmins(db *gorm.DB) (int64, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return 0, apperr.Dependency("count admins", err)
	}
	return count, nil
}
