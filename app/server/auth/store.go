package auth

import (
	"context"
	"gorm.io/datatypes"
	"net/http"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/models"
	"time"
)

// UserStore 是用户凭据的持久化接口。
// CreateFirstAdmin / UpdateAccount / Delete 必须把检查与写入放在同一个原子操作中完成，
// 检查逻辑使用本包的 CheckFirstAdmin / CheckAccountPatch / CheckDeletion。
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByIdentity(ctx context.Context, identity string) (*models.User, error)
	AdminExists(ctx context.Context) (bool, error)
	FirstAdmin(ctx context.Context) (*models.User, error)

	CreateFirstAdmin(ctx context.Context, user *models.User) error
	RecordLogin(ctx context.Context, id uint, at time.Time) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	UpdateProfile(ctx context.Context, id uint, profile models.Profile) error
	UpdateAccount(ctx context.Context, id uint, patch AccountPatch) (*models.User, error)
	Delete(ctx context.Context, id uint) error
}

// ProfilePatch 只会覆盖非 nil 的字段
type ProfilePatch struct {
	FirstName   *string           `json:"firstName" validate:"omitempty,max=50"`
	LastName    *string           `json:"lastName" validate:"omitempty,max=50"`
	Bio         *string           `json:"bio" validate:"omitempty,max=500"`
	Avatar      *string           `json:"avatar" validate:"omitempty,url"`
	SocialLinks *SocialLinksPatch `json:"socialLinks"`
}

type SocialLinksPatch struct {
	LinkedIn  *string `json:"linkedin" validate:"omitempty,url"`
	GitHub    *string `json:"github" validate:"omitempty,url"`
	Twitter   *string `json:"twitter" validate:"omitempty,url"`
	Instagram *string `json:"instagram" validate:"omitempty,url"`
	YouTube   *string `json:"youtube" validate:"omitempty,url"`
}

func (p *ProfilePatch) Apply(profile models.Profile) models.Profile {
	if p == nil {
		return profile
	}
	if p.FirstName != nil {
		profile.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		profile.LastName = *p.LastName
	}
	if p.Bio != nil {
		profile.Bio = *p.Bio
	}
	if p.Avatar != nil {
		profile.Avatar = *p.Avatar
	}
	if s := p.SocialLinks; s != nil {
		if s.LinkedIn != nil {
			profile.SocialLinks.LinkedIn = *s.LinkedIn
		}
		if s.GitHub != nil {
			profile.SocialLinks.GitHub = *s.GitHub
		}
		if s.Twitter != nil {
			profile.SocialLinks.Twitter = *s.Twitter
		}
		if s.Instagram != nil {
			profile.SocialLinks.Instagram = *s.Instagram
		}
		if s.YouTube != nil {
			profile.SocialLinks.YouTube = *s.YouTube
		}
	}
	return profile
}

// AccountPatch 是管理员可以修改的账号字段
type AccountPatch struct {
	Role     *models.Role  `json:"role" validate:"omitempty,oneof=admin user"`
	IsActive *bool         `json:"isActive"`
	Profile  *ProfilePatch `json:"profile"`
}

// Apply 返回应用修改后的副本
func (p *AccountPatch) Apply(user models.User) models.User {
	if p.Role != nil {
		user.Role = *p.Role
	}
	if p.IsActive != nil {
		user.IsActive = *p.IsActive
	}
	if p.Profile != nil {
		user.Profile = datatypes.NewJSONType(p.Profile.Apply(user.Profile.Data()))
	}
	return user
}

func ErrAdminExists() error {
	return apperr.Conflict(http.StatusForbidden, "admin user already exists, registration is closed")
}

func ErrIdentityTaken() error {
	return apperr.Conflict(http.StatusBadRequest, "username or email already exists")
}

func ErrLastAdmin() error {
	return apperr.Conflict(http.StatusBadRequest, "cannot delete the last admin")
}

// CheckFirstAdmin 判断当前是否允许注册管理员
func CheckFirstAdmin(adminExists, identityTaken bool) error {
	if adminExists {
		return ErrAdminExists()
	}
	if identityTaken {
		return ErrIdentityTaken()
	}
	return nil
}

// CheckDeletion 是删除用户前的最后一名管理员保护
func CheckDeletion(target *models.User, adminCount int64) error {
	if target.Role.IsPrivileged() && adminCount <= 1 {
		return ErrLastAdmin()
	}
	return nil
}

// CheckAccountPatch 保证修改后仍然恰好保留一名活跃的管理员：
// 不能降级或停用最后一名管理员，也不能在已有管理员时提升新的管理员
func CheckAccountPatch(target *models.User, patch *AccountPatch, adminCount int64) error {
	updated := patch.Apply(*target)

	if target.Role.IsPrivileged() && adminCount <= 1 {
		if !updated.Role.IsPrivileged() {
			return apperr.Conflict(http.StatusBadRequest, "cannot demote the last admin")
		}
		if !updated.IsActive {
			return apperr.Conflict(http.StatusBadRequest, "cannot deactivate the last admin")
		}
	}

	if !target.Role.IsPrivileged() && updated.Role.IsPrivileged() && adminCount > 0 {
		return ErrAdminExists()
	}

	return nil
}
