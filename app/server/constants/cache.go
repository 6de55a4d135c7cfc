package constants

import "time"

const (
	QueueKeyContactNotification = "portfolio:notify:contact"
)

const (
	NotifyEnqueueTimeout = 3 * time.Second
	NotifyPopTimeout     = 5 * time.Second
)
