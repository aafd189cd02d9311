package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventQuestionCreated        EventType = "question_created"
	EventQuestionEdited         EventType = "question_edited"
	EventQuestionAnswered       EventType = "question_answered"
	EventAnswerUpdated          EventType = "answer_updated"
	EventAnswerRetracted        EventType = "answer_retracted"
	EventQuestionDeleted        EventType = "question_deleted"
	EventQuestionDeletedByStaff EventType = "question_deleted_by_staff"
)

// Event represents a domain event emitted by the workflow service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	PostID    string      `json:"post_id"`
	Seq       int64       `json:"seq"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// QuestionCreatedPayload payload.
type QuestionCreatedPayload struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

// QuestionAnsweredPayload payload.
type QuestionAnsweredPayload struct {
	Title            string `json:"title"`
	NotificationSent bool   `json:"notification_sent"`
}
