package store

import (
	"context"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/models"
	"portfolio-backend/app/server/query"
)

// 留言的提交内容不可修改，管理员只能修改处理流程相关的字段
var contactWritableColumns = []string{
	"status", "priority", "notes", "follow_up_date", "tags", "updated_at",
}

type ContactStore struct {
	db *gorm.DB
}

func NewContactStore(db *gorm.DB) *ContactStore {
	return &ContactStore{db: db}
}

type ContactFilter struct {
	Status      *models.ContactStatus
	Priority    *models.Priority
	IsSpam      *bool
	ProjectType *models.ProjectType
}

func (s *ContactStore) List(ctx context.Context, f ContactFilter, p query.Params) ([]models.Contact, query.Pagination, error) {
	return query.Find[models.Contact](ctx, s.db, ContactQuery, p,
		query.Eq("status", f.Status),
		query.Eq("priority", f.Priority),
		query.Eq("is_spam", f.IsSpam),
		query.Eq("project_type", f.ProjectType),
	)
}

func (s *ContactStore) Create(ctx context.Context, contact *models.Contact) error {
	if err := s.db.WithContext(ctx).Create(contact).Error; err != nil {
		return apperr.Dependency("create contact", err)
	}
	return nil
}

func (s *ContactStore) Get(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := s.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "contact", "find contact")
	}
	return &contact, nil
}

func (s *ContactStore) Update(ctx context.Context, id uint, mutate Mutator[models.Contact]) (*models.Contact, error) {
	var contact models.Contact
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&contact, "id = ?", id).Error; err != nil {
			return wrap(err, "contact", "find contact")
		}
		if err := mutate(&contact); err != nil {
			return err
		}
		if err := tx.Model(&contact).Select(contactWritableColumns).Updates(&contact).Error; err != nil {
			return apperr.Dependency("update contact", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// MarkSpam 标记为垃圾留言，spam 标签只会添加一次
func (s *ContactStore) MarkSpam(ctx context.Context, id uint) (*models.Contact, error) {
	var contact models.Contact
	res := s.db.WithContext(ctx).
		Model(&contact).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_spam": true,
			"tags": gorm.Expr(
				"CASE WHEN ? = ANY(COALESCE(tags, '{}')) THEN tags ELSE array_append(COALESCE(tags, '{}'), ?) END",
				models.SpamTag, models.SpamTag,
			),
		})
	if res.Error != nil {
		return nil, apperr.Dependency("mark contact as spam", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound("contact")
	}
	return &contact, nil
}

func (s *ContactStore) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Contact{}, id)
	if res.Error != nil {
		return apperr.Dependency("delete contact", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("contact")
	}
	return nil
}

func (s *ContactStore) Recent(ctx context.Context, limit int) ([]models.Contact, error) {
	contacts := []models.Contact{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&contacts).Error; err != nil {
		return nil, apperr.Dependency("list recent contacts", err)
	}
	return contacts, nil
}

func (s *ContactStore) All(ctx context.Context) ([]models.Contact, error) {
	contacts := []models.Contact{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&contacts).Error; err != nil {
		return nil, apperr.Dependency("list contacts", err)
	}
	return contacts, nil
}
