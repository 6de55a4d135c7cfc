package models

import (
	"github.com/lib/pq"
	"time"
)

type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusReplied  ContactStatus = "replied"
	ContactStatusArchived ContactStatus = "archived"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type ProjectType string

const (
	ProjectTypeWebDevelopment ProjectType = "web-development"
	ProjectTypeMobileApp      ProjectType = "mobile-app"
	ProjectTypeUIUXDesign     ProjectType = "ui-ux-design"
	ProjectTypeConsultation   ProjectType = "consultation"
	ProjectTypeOther          ProjectType = "other"
)

type ContactSource string

const (
	ContactSourceForm     ContactSource = "contact-form"
	ContactSourceEmail    ContactSource = "email"
	ContactSourceSocial   ContactSource = "social-media"
	ContactSourceReferral ContactSource = "referral"
)

const (
	BudgetNotSpecified   = "not-specified"
	TimelineNotSpecified = "not-specified"

	SpamTag = "spam"
)

type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 提交内容，提交后不可修改
	Name        string      `gorm:"column:name" json:"name"`
	Email       string      `gorm:"column:email" json:"email"`
	Subject     string      `gorm:"column:subject" json:"subject"`
	Message     string      `gorm:"column:message" json:"message"`
	Phone       string      `gorm:"column:phone" json:"phone,omitempty"`
	Company     string      `gorm:"column:company" json:"company,omitempty"`
	ProjectType ProjectType `gorm:"column:project_type;index" json:"projectType"`
	Budget      string      `gorm:"column:budget" json:"budget"`
	Timeline    string      `gorm:"column:timeline" json:"timeline"`

	// 处理流程
	Status       ContactStatus  `gorm:"column:status;index" json:"status"`
	Priority     Priority       `gorm:"column:priority;index" json:"priority"`
	IsSpam       bool           `gorm:"column:is_spam;index" json:"isSpam"`
	Tags         pq.StringArray `gorm:"column:tags;type:text[]" json:"tags"`
	Notes        string         `gorm:"column:notes" json:"notes,omitempty"`
	FollowUpDate *time.Time     `gorm:"column:follow_up_date" json:"followUpDate,omitempty"`

	// 来源
	Source    ContactSource `gorm:"column:source" json:"source"`
	IPAddress string        `gorm:"column:ip_address" json:"ipAddress,omitempty"`
	UserAgent string        `gorm:"column:user_agent" json:"userAgent,omitempty"`
}

// HasTag 判断标签是否已存在
func (c *Contact) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
