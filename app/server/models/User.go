package models

import (
	"gorm.io/datatypes"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// IsPrivileged 是所有管理员权限判断的唯一入口
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin
}

type SocialLinks struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	YouTube   string `json:"youtube,omitempty"`
}

type Profile struct {
	FirstName   string      `json:"firstName,omitempty"`
	LastName    string      `json:"lastName,omitempty"`
	Bio         string      `json:"bio,omitempty"`
	Avatar      string      `json:"avatar,omitempty"`
	SocialLinks SocialLinks `json:"socialLinks"`
}

type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// 基础信息
	Username string `gorm:"column:username;uniqueIndex"` // 用户名，全局唯一
	Email    string `gorm:"column:email;uniqueIndex"`    // 邮箱，保存前统一转为小写，全局唯一
	Role     Role   `gorm:"column:role;index"`           // 角色：只有管理员可以登录管理后台
	IsActive bool   `gorm:"column:is_active"`            // 停用的账号无法登录

	// 登录与授权认证相关
	Password  string     `gorm:"column:password" json:"-"` // 密码，使用 argon2id 储存，不参与序列化
	LastLogin *time.Time `gorm:"column:last_login"`

	Profile datatypes.JSONType[Profile] `gorm:"column:profile"`
}

// UserView 是对外返回的用户信息，不包含密码
type UserView struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	Profile   Profile    `json:"profile"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		Profile:   u.Profile.Data(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func UserViews(users []User) []UserView {
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	return views
}
