package dto

import (
	"time"

	"github.com/spec-kit/qna-service/internal/domain"
)

// SubmitPostRequest payload.
type SubmitPostRequest struct {
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	AuthorPhone string `json:"author_phone"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Secret      string `json:"secret"`
}

// EditPostRequest payload. The secret authorizes the edit.
type EditPostRequest struct {
	Secret string `json:"secret"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// DeletePostRequest payload.
type DeletePostRequest struct {
	Secret string `json:"secret"`
}

// VerifySecretRequest payload for the pre-flight ownership check.
type VerifySecretRequest struct {
	Secret string `json:"secret"`
}

// AnswerRequest payload for staff answer create/update.
type AnswerRequest struct {
	AnswerBody string `json:"answer_body"`
}

// PostDetailResponse is the public detail view. Contact fields other than the
// author name stay private.
type PostDetailResponse struct {
	ID         string     `json:"id"`
	Seq        int64      `json:"seq"`
	AuthorName string     `json:"author_name"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	Answered   bool       `json:"answered"`
	AnswerBody *string    `json:"answer_body,omitempty"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	Views      int64      `json:"views"`
	CreatedAt  time.Time  `json:"created_at"`
}

// StaffPostResponse is the staff view including contact fields.
type StaffPostResponse struct {
	ID          string     `json:"id"`
	Seq         int64      `json:"seq"`
	AuthorName  string     `json:"author_name"`
	AuthorEmail string     `json:"author_email"`
	AuthorPhone string     `json:"author_phone"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Answered    bool       `json:"answered"`
	AnswerBody  *string    `json:"answer_body,omitempty"`
	AnsweredAt  *time.Time `json:"answered_at,omitempty"`
	Views       int64      `json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PostDetail maps a post to its public detail view.
func PostDetail(post *domain.QnaPost) PostDetailResponse {
	return PostDetailResponse{
		ID:         post.ID,
		Seq:        post.Seq,
		AuthorName: post.AuthorName,
		Title:      post.Title,
		Body:       post.Body,
		Answered:   post.Answered,
		AnswerBody: post.AnswerBody,
		AnsweredAt: post.AnsweredAt,
		Views:      post.Views,
		CreatedAt:  post.CreatedAt,
	}
}

// StaffPost maps a post to its staff view.
func StaffPost(post *domain.QnaPost) StaffPostResponse {
	return StaffPostResponse{
		ID:          post.ID,
		Seq:         post.Seq,
		AuthorName:  post.AuthorName,
		AuthorEmail: post.AuthorEmail,
		AuthorPhone: post.AuthorPhone,
		Title:       post.Title,
		Body:        post.Body,
		Answered:    post.Answered,
		AnswerBody:  post.AnswerBody,
		AnsweredAt:  post.AnsweredAt,
		Views:       post.Views,
		CreatedAt:   post.CreatedAt,
	}
}
