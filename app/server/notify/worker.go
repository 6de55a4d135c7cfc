package notify

import (
	"context"
	"errors"
	"go.uber.org/zap"
	"portfolio-backend/app/server/metrics"
	"portfolio-backend/app/server/types"
	"time"
)

type WorkerOptions struct {
	To          string        // 管理员收件地址
	PopTimeout  time.Duration // 每次阻塞等待任务的时长
	SendTimeout time.Duration // 单封邮件的发送超时
}

// Worker 从队列中取出通知并发送邮件，失败的任务只记录日志，不会重试
type Worker struct {
	l      *zap.Logger
	q      Queue
	mailer Mailer
	m      *metrics.Metrics
	opts   WorkerOptions

	cancel context.CancelFunc
	done   chan struct{}
}

func NewWorker(l *zap.Logger, q Queue, mailer Mailer, m *metrics.Metrics, opts WorkerOptions) *Worker {
	return &Worker{
		l:      l,
		q:      q,
		mailer: mailer,
		m:      m,
		opts:   opts,
	}
}

func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.loop(ctx)
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.done)

	for {
		if ctx.Err() != nil {
			w.l.Debug("stop notification loop")
			return
		}

		job, err := w.q.Pop(ctx, w.opts.PopTimeout)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) || ctx.Err() != nil {
				continue
			}
			w.l.Error("failed to pop notification", zap.Error(err))

			// 队列不可用时稍作等待，避免空转
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		w.handle(ctx, job)
	}
}

func (w *Worker) handle(ctx context.Context, job *types.NotificationJob) {
	msg, err := Render(job, w.opts.To)
	if err != nil {
		w.m.ObserveNotification(metrics.NotifySendFailed)
		w.l.Error("failed to render notification", zap.Stringer("jobId", job.ID), zap.Error(err))
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.opts.SendTimeout)
	defer cancel()

	if err = w.mailer.Send(sendCtx, msg); err != nil {
		if errors.Is(err, ErrSkipped) {
			w.m.ObserveNotification(metrics.NotifySkipped)
			return
		}
		w.m.ObserveNotification(metrics.NotifySendFailed)
		w.l.Error("failed to send notification email",
			zap.Stringer("jobId", job.ID),
			zap.Uint("contactId", job.ContactID),
			zap.Error(err),
		)
		return
	}

	w.m.ObserveNotification(metrics.NotifySent)
	w.l.Info("notification email sent", zap.Stringer("jobId", job.ID), zap.Uint("contactId", job.ContactID))
}

// Stop 等待当前任务处理完成后返回
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}
