package notify

import (
	"context"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"portfolio-backend/app/server/metrics"
	"portfolio-backend/app/server/models"
	"portfolio-backend/app/server/types"
	"sync"
	"time"
)

// Dispatcher 把通知交给队列，调用方不会等待，也不会收到错误
type Dispatcher struct {
	l       *zap.Logger
	q       Queue
	m       *metrics.Metrics
	timeout time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(l *zap.Logger, q Queue, m *metrics.Metrics, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		l:       l,
		q:       q,
		m:       m,
		timeout: timeout,
	}
}

func NewContactJob(contact *models.Contact) *types.NotificationJob {
	return &types.NotificationJob{
		ID:          uuid.New(),
		Kind:        types.NotificationContactSubmitted,
		ContactID:   contact.ID,
		Name:        contact.Name,
		Email:       contact.Email,
		Subject:     contact.Subject,
		Message:     contact.Message,
		Company:     contact.Company,
		Phone:       contact.Phone,
		ProjectType: string(contact.ProjectType),
		Budget:      contact.Budget,
		Timeline:    contact.Timeline,
		IsSpam:      contact.IsSpam,
		SubmittedAt: contact.CreatedAt,
	}
}

func (d *Dispatcher) ContactSubmitted(contact *models.Contact) {
	job := NewContactJob(contact)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		// 与请求的生命周期解耦，使用独立的超时
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.q.Push(ctx, job); err != nil {
			d.m.ObserveNotification(metrics.NotifyEnqueueFailed)
			d.l.Error("failed to enqueue contact notification",
				zap.Uint("contactId", job.ContactID),
				zap.Stringer("jobId", job.ID),
				zap.Error(err),
			)
			return
		}

		d.m.ObserveNotification(metrics.NotifyEnqueued)
		d.l.Debug("contact notification enqueued", zap.Uint("contactId", job.ContactID), zap.Stringer("jobId", job.ID))
	}()
}

// Close 等待所有正在进行的投递完成
func (d *Dispatcher) Close() {
	d.wg.Wait()
}
