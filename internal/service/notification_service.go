package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/qna-service/internal/events"
)

// NotificationService logs board lifecycle events for operations. Answer
// e-mails are sent inline by the workflow service; this subscriber only
// provides the operational trail.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventQuestionCreated, n.logEvent("QuestionCreated"))
	n.dispatcher.Subscribe(events.EventQuestionEdited, n.logEvent("QuestionEdited"))
	n.dispatcher.Subscribe(events.EventQuestionAnswered, n.logEvent("QuestionAnswered"))
	n.dispatcher.Subscribe(events.EventAnswerUpdated, n.logEvent("AnswerUpdated"))
	n.dispatcher.Subscribe(events.EventAnswerRetracted, n.logEvent("AnswerRetracted"))
	n.dispatcher.Subscribe(events.EventQuestionDeleted, n.logEvent("QuestionDeleted"))
	n.dispatcher.Subscribe(events.EventQuestionDeletedByStaff, n.logEvent("QuestionDeletedByStaff"))
}

func (n *NotificationService) logEvent(name string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		n.logger.Info(name,
			zap.String("post_id", event.PostID),
			zap.Int64("seq", event.Seq),
			zap.Any("payload", event.Payload),
		)
		return nil
	}
}
