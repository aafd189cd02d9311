package domain

import "time"

// ListOrder selects the ordering policy for post listings.
type ListOrder string

const (
	// OrderNewestFirst orders strictly by creation time descending (public list).
	OrderNewestFirst ListOrder = "NEWEST_FIRST"
	// OrderUnansweredFirst groups unanswered posts before answered ones,
	// newest first within each group (staff list).
	OrderUnansweredFirst ListOrder = "UNANSWERED_FIRST"
)

// QnaPost is the aggregate for anonymous Q&A board posts.
//
// Answered, AnswerBody and AnsweredAt always change together: Answered is
// true exactly when both answer fields are present.
type QnaPost struct {
	ID          string
	Seq         int64
	AuthorName  string
	AuthorEmail string
	AuthorPhone string
	Title       string
	Body        string
	SecretHash  string
	Answered    bool
	AnswerBody  *string
	AnsweredAt  *time.Time
	Views       int64
	CreatedAt   time.Time
}
