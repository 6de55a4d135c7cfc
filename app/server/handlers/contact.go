package handlers

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"net/http"
	"portfolio-backend/app/server/models"
	"portfolio-backend/app/server/spam"
	"portfolio-backend/app/server/store"
	"strings"
	"time"
)

type contactSubmitRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Message     string `json:"message" validate:"required,max=2000"`
	Phone       string `json:"phone" validate:"max=20"`
	Company     string `json:"company" validate:"max=100"`
	ProjectType string `json:"projectType" validate:"omitempty,oneof=web-development mobile-app ui-ux-design consultation other"`
	Budget      string `json:"budget" validate:"omitempty,oneof=under-5k 5k-10k 10k-25k 25k-50k 50k+ not-specified"`
	Timeline    string `json:"timeline" validate:"omitempty,oneof=asap 1-2-weeks 1-2-months 3-6-months 6+months not-specified"`
}

type contactListQuery struct {
	PageQuery
	Status      string `query:"status" validate:"omitempty,oneof=new read replied archived"`
	Priority    string `query:"priority" validate:"omitempty,oneof=low medium high urgent"`
	IsSpam      string `query:"isSpam" validate:"omitempty,oneof=true false"`
	ProjectType string `query:"projectType" validate:"omitempty,oneof=web-development mobile-app ui-ux-design consultation other"`
}

// contactUpdateRequest 只包含管理员可以修改的处理字段，提交内容不可修改
type contactUpdateRequest struct {
	Status       *models.ContactStatus `json:"status" validate:"omitempty,oneof=new read replied archived"`
	Priority     *models.Priority      `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Notes        *string               `json:"notes" validate:"omitempty,max=1000"`
	FollowUpDate *time.Time            `json:"followUpDate"`
	Tags         []string              `json:"tags" validate:"omitempty,max=20,dive,required,max=30"`
}

func (a *App) contactMapFields(req *contactUpdateRequest, contact *models.Contact) {
	if req.Status != nil {
		contact.Status = *req.Status
	}
	if req.Priority != nil {
		contact.Priority = *req.Priority
	}
	if req.Notes != nil {
		contact.Notes = strings.TrimSpace(*req.Notes)
	}
	if req.FollowUpDate != nil {
		contact.FollowUpDate = req.FollowUpDate
	}
	if req.Tags != nil {
		contact.Tags = req.Tags
	}
}

// ContactSubmit 保存联系表单，疑似垃圾留言同样返回 201
func (a *App) ContactSubmit(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req contactSubmitRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, "failed to bind request", err)
	}

	contact := models.Contact{
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:     strings.TrimSpace(req.Subject),
		Message:     strings.TrimSpace(req.Message),
		Phone:       strings.TrimSpace(req.Phone),
		Company:     strings.TrimSpace(req.Company),
		ProjectType: models.ProjectTypeOther,
		Budget:      models.BudgetNotSpecified,
		Timeline:    models.TimelineNotSpecified,
		Status:      models.ContactStatusNew,
		Priority:    models.PriorityMedium,
		Tags:        []string{},
		Source:      models.ContactSourceForm,
		IPAddress:   c.RealIP(),
		UserAgent:   c.Request().UserAgent(),
	}
	if req.ProjectType != "" {
		contact.ProjectType = models.ProjectType(req.ProjectType)
	}
	if req.Budget != "" {
		contact.Budget = req.Budget
	}
	if req.Timeline != "" {
		contact.Timeline = req.Timeline
	}

	// 垃圾留言检测
	verdict := spam.Check(spam.Submission{
		Name:    contact.Name,
		Email:   contact.Email,
		Message: contact.Message,
	})
	if verdict.IsSpam {
		contact.IsSpam = true
		contact.Tags = append(contact.Tags, models.SpamTag)
		a.l.Info("contact flagged as spam", zap.String("email", contact.Email), zap.Any("reasons", verdict.Reasons))
	}

	if err := a.contacts.Create(rctx, &contact); err != nil {
		return a.fail(c, "failed to create contact", err, zap.String("email", contact.Email))
	}

	// 通知管理员，失败不影响响应
	a.notifier.ContactSubmitted(&contact)

	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Thank you for your message! I will get back to you soon.",
		"contactId": contact.ID,
	})
}

func (a *App) ContactList(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定查询参数
	var q contactListQuery
	if err := a.bindQuery(c, &q); err != nil {
		return a.fail(c, "failed to bind query", err)
	}
	p, err := q.params(store.ContactQuery)
	if err != nil {
		return a.fail(c, "invalid query", err)
	}

	contacts, pagination, err := a.contacts.List(rctx, store.ContactFilter{
		Status:      optional[models.ContactStatus](q.Status),
		Priority:    optional[models.Priority](q.Priority),
		IsSpam:      optionalBool(q.IsSpam),
		ProjectType: optional[models.ProjectType](q.ProjectType),
	}, p)
	if err != nil {
		return a.fail(c, "failed to list contacts", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"contacts":   contacts,
		"pagination": pagination,
	})
}

// ContactGet 第一次查看新留言时把状态改为已读
func (a *App) ContactGet(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.fail(c, "invalid id", err)
	}

	rctx := c.Request().Context()

	contact, err := a.contacts.Get(rctx, id)
	if err != nil {
		return a.fail(c, "failed to get contact", err, zap.Uint("id", id))
	}

	if contact.Status == models.ContactStatusNew {
		contact, err = a.contacts.Update(rctx, id, func(ct *models.Contact) error {
			if ct.Status == models.ContactStatusNew {
				ct.Status = models.ContactStatusRead
			}
			return nil
		})
		if err != nil {
			return a.fail(c, "failed to mark contact as read", err, zap.Uint("id", id))
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"contact": contact,
	})
}

func (a *App) ContactUpdate(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.fail(c, "invalid id", err)
	}

	// 绑定请求体
	var req contactUpdateRequest
	if err := a.bind(c, &req); err != nil {
		return a.fail(c, "failed to bind request", err)
	}

	contact, err := a.contacts.Update(c.Request().Context(), id, func(ct *models.Contact) error {
		a.contactMapFields(&req, ct)
		return nil
	})
	if err != nil {
		return a.fail(c, "failed to update contact", err, zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Contact updated successfully",
		"contact": contact,
	})
}

func (a *App) ContactMarkSpam(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.fail(c, "invalid id", err)
	}

	contact, err := a.contacts.MarkSpam(c.Request().Context(), id)
	if err != nil {
		return a.fail(c, "failed to mark contact as spam", err, zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Contact marked as spam",
		"contact": contact,
	})
}

func (a *App) ContactDelete(c echo.Context) error {
	id, err := a.pathID(c)
	if err != nil {
		return a.fail(c, "invalid id", err)
	}

	if err := a.contacts.Delete(c.Request().Context(), id); err != nil {
		return a.fail(c, "failed to delete contact", err, zap.Uint("id", id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Contact deleted successfully",
	})
}

func (a *App) ContactStats(c echo.Context) error {
	report, err := a.reporter.Contacts(c.Request().Context())
	if err != nil {
		return a.fail(c, "failed to get contact stats", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"stats": report,
	})
}
