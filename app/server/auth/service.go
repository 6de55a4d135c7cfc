package auth

import (
	"context"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/models"
	"strings"
	"time"
	"unicode"
)

const (
	msgInvalidCredentials = "invalid credentials"
	msgAdminRequired      = "access denied, admin privileges required"
	msgAccountDeactivated = "account is deactivated"
	msgInvalidToken       = "invalid or expired token"
)

// TokenIssuer 由 jwt.JWT 实现
type TokenIssuer interface {
	Sign(subject uint, ttl time.Duration) (string, time.Time, error)
	Verify(token string) (uint, error)
}

type Service struct {
	l      *zap.Logger
	users  UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	ttl    time.Duration
	now    func() time.Time

	// 用户不存在时也进行一次校验，避免通过响应时间判断账号是否存在
	dummyHash string
}

func NewService(l *zap.Logger, users UserStore, hasher PasswordHasher, tokens TokenIssuer, ttl time.Duration) (*Service, error) {
	dummyHash, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, apperr.Dependency("prepare dummy hash", err)
	}

	return &Service{
		l:         l,
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		ttl:       ttl,
		now:       time.Now,
		dummyHash: dummyHash,
	}, nil
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Profile  models.Profile
}

// Session 是登录或注册成功后返回给调用方的内容
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// PasswordStrongEnough 要求至少包含大写字母、小写字母和数字各一个
func PasswordStrongEnough(password string) bool {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) RegisterFirstAdmin(ctx context.Context, in RegisterInput) (*Session, error) {
	if !PasswordStrongEnough(in.Password) {
		return nil, apperr.Validation("validation failed", map[string]string{
			"password": "must contain at least one uppercase letter, one lowercase letter, and one number",
		})
	}

	// 处理密码
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Dependency("hash password", err)
	}

	// 角色固定为管理员，忽略调用方传入的任何角色
	user := &models.User{
		Username: strings.TrimSpace(in.Username),
		Email:    NormalizeEmail(in.Email),
		Role:     models.RoleAdmin,
		IsActive: true,
		Password: hash,
		Profile:  datatypes.NewJSONType(in.Profile),
	}
	if err = s.users.CreateFirstAdmin(ctx, user); err != nil {
		return nil, err
	}

	s.l.Info("first admin registered", zap.Uint("id", user.ID), zap.String("username", user.Username))

	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, identity, password string) (*Session, error) {
	user, err := s.users.FindByIdentity(ctx, strings.TrimSpace(identity))
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			_, _ = s.hasher.Verify(password, s.dummyHash)
			return nil, apperr.Unauthenticated(msgInvalidCredentials)
		}
		return nil, err
	}

	// 先校验密码，凭据错误时不透露角色与状态
	match, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		return nil, apperr.Dependency("verify password", err)
	}
	if !match {
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}

	if !user.Role.IsPrivileged() {
		return nil, apperr.Forbidden(msgAdminRequired)
	}
	if !user.IsActive {
		return nil, apperr.Unauthenticated(msgAccountDeactivated)
	}

	// 更新最后登录时间
	now := s.now()
	if err = s.users.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return s.issue(user)
}

// Verify 校验令牌并返回用户 ID
func (s *Service) Verify(token string) (uint, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		s.l.Debug("token rejected", zap.Error(err))
		return 0, apperr.Unauthenticated(msgInvalidToken)
	}
	return id, nil
}

// Authenticate 返回令牌所属的仍然有效的用户
func (s *Service) Authenticate(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthenticated(msgInvalidToken)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Unauthenticated(msgAccountDeactivated)
	}
	return user, nil
}

func (s *Service) RequireAdmin(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Authenticate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Role.IsPrivileged() {
		return nil, apperr.Forbidden(msgAdminRequired)
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, id uint, current, next string) error {
	user, err := s.Authenticate(ctx, id)
	if err != nil {
		return err
	}

	match, err := s.hasher.Verify(current, user.Password)
	if err != nil {
		return apperr.Dependency("verify password", err)
	}
	if !match {
		return apperr.Validation("current password is incorrect", map[string]string{
			"currentPassword": "is incorrect",
		})
	}
	if !PasswordStrongEnough(next) {
		return apperr.Validation("validation failed", map[string]string{
			"newPassword": "must contain at least one uppercase letter, one lowercase letter, and one number",
		})
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return apperr.Dependency("hash password", err)
	}
	return s.users.UpdatePassword(ctx, id, hash)
}

func (s *Service) AdminExists(ctx context.Context) (bool, error) {
	return s.users.AdminExists(ctx)
}

// AdminInfo 返回公开展示用的管理员信息
func (s *Service) AdminInfo(ctx context.Context) (*models.User, error) {
	return s.users.FirstAdmin(ctx)
}

func (s *Service) Profile(ctx context.Context, id uint) (*models.User, error) {
	return s.Authenticate(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, id uint, patch *ProfilePatch) (*models.User, error) {
	user, err := s.Authenticate(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := patch.Apply(user.Profile.Data())
	if err = s.users.UpdateProfile(ctx, id, profile); err != nil {
		return nil, err
	}
	user.Profile = datatypes.NewJSONType(profile)

	return user, nil
}

// UpdateAccount 由管理员调用，修改其他用户的角色、状态与资料
func (s *Service) UpdateAccount(ctx context.Context, id uint, patch AccountPatch) (*models.User, error) {
	return s.users.UpdateAccount(ctx, id, patch)
}

// DeleteUser 删除用户，最后一名管理员无法删除
func (s *Service) DeleteUser(ctx context.Context, id uint) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.l.Info("user deleted", zap.Uint("id", id))
	return nil
}

func (s *Service) issue(user *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Sign(user.ID, s.ttl)
	if err != nil {
		return nil, apperr.Dependency("sign token", err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
