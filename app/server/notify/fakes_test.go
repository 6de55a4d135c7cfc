package notify

import (
	"context"
	"errors"
	"portfolio-backend/app/server/types"
	"sync"
	"time"
)

type chanQueue struct {
	jobs    chan *types.NotificationJob
	pushErr error
}

func newChanQueue() *chanQueue {
	return &chanQueue{jobs: make(chan *types.NotificationJob, 16)}
}

func (q *chanQueue) Push(_ context.Context, job *types.NotificationJob) error {
	if q.pushErr != nil {
		return q.pushErr
	}
	q.jobs <- job
	return nil
}

func (q *chanQueue) Pop(ctx context.Context, timeout time.Duration) (*types.NotificationJob, error) {
	select {
	case job := <-q.jobs:
		return job, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, ErrQueueEmpty
	}
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []*Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) messages() []*Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Message(nil), m.sent...)
}

var errSMTPDown = errors.New("smtp down")
