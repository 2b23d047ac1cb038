// Package notify reminds an inactive user to come back to the app.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Kind string

const (
	KindRepeating Kind = "repeating"
	KindOneShot   Kind = "one_shot"
)

type Notification struct {
	Kind  Kind
	Title string
	Body  string
}

var (
	repeatingNotification = Notification{
		Kind:  KindRepeating,
		Title: "We miss you",
		Body:  "Open the app to keep working on your projects.",
	}
	oneShotNotification = Notification{
		Kind:  KindOneShot,
		Title: "Come back to the app",
		Body:  "We saved your progress. Pick up where you left off.",
	}
)

// Notifier delivers a notification to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	log logrus.FieldLogger
}

func NewLogNotifier(log logrus.FieldLogger) *LogNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, notification Notification) error {
	n.log.WithFields(logrus.Fields{
		"kind":  notification.Kind,
		"title": notification.Title,
	}).Info(notification.Body)
	return nil
}
