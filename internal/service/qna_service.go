package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/qna-service/internal/auth"
	"github.com/spec-kit/qna-service/internal/cache"
	"github.com/spec-kit/qna-service/internal/domain"
	"github.com/spec-kit/qna-service/internal/events"
	"github.com/spec-kit/qna-service/internal/notify"
	"github.com/spec-kit/qna-service/internal/repository"
)

// QnaService coordinates the anonymous Q&A board workflow.
//
// Visitors own their posts through a per-post secret; operators own the
// answer lifecycle. An answered post is locked against its author until the
// answer is retracted.
type QnaService struct {
	posts      repository.PostRepository
	notifier   notify.Notifier
	dispatcher events.Dispatcher
	listCache  *cache.ListCache
	logger     *zap.Logger
	bcryptCost int
}

// Dependencies bundles collaborators for the Q&A service.
type Dependencies struct {
	PostRepo   repository.PostRepository
	Notifier   notify.Notifier
	Dispatcher events.Dispatcher
	ListCache  *cache.ListCache
	Logger     *zap.Logger
	BcryptCost int
}

// NewQnaService constructs the service.
func NewQnaService(deps Dependencies) *QnaService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	return &QnaService{
		posts:      deps.PostRepo,
		notifier:   notifier,
		dispatcher: deps.Dispatcher,
		listCache:  deps.ListCache,
		logger:     logger,
		bcryptCost: deps.BcryptCost,
	}
}

// SubmitInput describes a visitor submission. Secret arrives in plaintext and
// is discarded after hashing.
type SubmitInput struct {
	AuthorName  string
	AuthorEmail string
	AuthorPhone string
	Title       string
	Body        string
	Secret      string
}

// VerifyResult is the pre-flight ownership check outcome. It is a UX
// convenience only; every mutating operation repeats the authoritative check.
type VerifyResult struct {
	Valid     bool `json:"valid"`
	Answered  bool `json:"answered"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

// AnswerResult carries the answered post plus the outcome of the best-effort
// notification. NotificationErr being non-nil never means the answer failed.
type AnswerResult struct {
	Post             *domain.QnaPost
	NotificationErr  error
	NotificationSent bool
}

// PublicSummary is the contact-free listing row exposed to visitors.
type PublicSummary struct {
	ID         string     `json:"id"`
	Seq        int64      `json:"seq"`
	Title      string     `json:"title"`
	AuthorName string     `json:"author_name"`
	Answered   bool       `json:"answered"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	Views      int64      `json:"views"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Submit creates a new unanswered post.
func (s *QnaService) Submit(ctx context.Context, input SubmitInput) (*domain.QnaPost, error) {
	missing := []string{}
	require := func(name, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}
	require("author_name", input.AuthorName)
	require("author_email", input.AuthorEmail)
	require("author_phone", input.AuthorPhone)
	require("title", input.Title)
	require("body", input.Body)
	require("secret", input.Secret)
	if len(missing) > 0 {
		return nil, domain.NewValidationError(missing...)
	}

	digest, err := auth.HashSecret(input.Secret, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	post, err := s.posts.Create(ctx, repository.PostDraft{
		AuthorName:  input.AuthorName,
		AuthorEmail: input.AuthorEmail,
		AuthorPhone: input.AuthorPhone,
		Title:       input.Title,
		Body:        input.Body,
		SecretHash:  digest,
	})
	if err != nil {
		return nil, err
	}

	s.listCache.Invalidate(ctx)
	s.publishEvent(ctx, events.Event{
		Type:   events.EventQuestionCreated,
		PostID: post.ID,
		Seq:    post.Seq,
		Payload: events.QuestionCreatedPayload{
			Title:      post.Title,
			AuthorName: post.AuthorName,
		},
	})
	return post, nil
}

// VisitorEdit replaces title and body of an unanswered post after secret
// verification. The lock is reported before the secret is checked, so a
// caller with the correct secret still learns the post is locked.
func (s *QnaService) VisitorEdit(ctx context.Context, id, secret, title, body string) (*domain.QnaPost, error) {
	missing := []string{}
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return nil, domain.NewValidationError(missing...)
	}

	post, err := s.authorizeVisitor(ctx, id, secret)
	if err != nil {
		return nil, err
	}
	// The guarded update is authoritative; a concurrent answer between the
	// check above and here surfaces as ErrAlreadyAnswered.
	if err := s.posts.UpdateContent(ctx, post.ID, title, body); err != nil {
		return nil, err
	}

	updated, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	s.listCache.Invalidate(ctx)
	s.publishEvent(ctx, events.Event{
		Type:   events.EventQuestionEdited,
		PostID: updated.ID,
		Seq:    updated.Seq,
	})
	return updated, nil
}

// VisitorDelete permanently removes an unanswered post after secret
// verification.
func (s *QnaService) VisitorDelete(ctx context.Context, id, secret string) error {
	post, err := s.authorizeVisitor(ctx, id, secret)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	s.listCache.Invalidate(ctx)
	s.publishEvent(ctx, events.Event{
		Type:   events.EventQuestionDeleted,
		PostID: post.ID,
		Seq:    post.Seq,
	})
	return nil
}

// VerifySecret is the pre-flight ownership check. It never mutates.
func (s *QnaService) VerifySecret(ctx context.Context, id, secret string) (*VerifyResult, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	valid := auth.VerifySecret(post.SecretHash, secret)
	return &VerifyResult{
		Valid:     valid,
		Answered:  post.Answered,
		CanEdit:   valid && !post.Answered,
		CanDelete: valid && !post.Answered,
	}, nil
}

// Answer attaches the staff answer, locks the post and fires one best-effort
// e-mail to the author. A failed send is surfaced on the result, never as an
// operation failure.
func (s *QnaService) Answer(ctx context.Context, id, answerBody string) (*AnswerResult, error) {
	if strings.TrimSpace(answerBody) == "" {
		return nil, domain.NewValidationError("answer_body")
	}

	if err := s.posts.SetAnswer(ctx, id, answerBody, time.Now()); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &AnswerResult{Post: post}
	subject := "Re: " + post.Title
	mailBody := fmt.Sprintf("Your question %q has been answered:\r\n\r\n%s\r\n", post.Title, answerBody)
	if err := s.notifier.Send(ctx, post.AuthorEmail, subject, mailBody); err != nil {
		s.logger.Warn("answer notification failed",
			zap.String("post_id", post.ID),
			zap.Error(err),
		)
		result.NotificationErr = err
	} else {
		result.NotificationSent = true
	}

	s.listCache.Invalidate(ctx)
	s.publishEvent(ctx, events.Event{
		Type:   events.EventQuestionAnswered,
		PostID: post.ID,
		Seq:    post.Seq,
		Payload: events.QuestionAnsweredPayload{
			Title:            post.Title,
			NotificationSent: result.NotificationSent,
		},
	})
	return result, nil
}

// EditAnswer replaces the body of an existing answer and refreshes its
// timestamp. No re-notification is sent.
func (s *QnaService) EditAnswer(ctx context.Context, id, answerBody string) (*domain.QnaPost, error) {
	if strings.TrimSpace(answerBody) == "" {
		return nil, domain.NewValidationError("answer_body")
	}
	if err := s.posts.UpdateAnswer(ctx, id, answerBody, time.Now()); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.listCache.Invalidate(ctx)
	s.publishEvent(ctx, events.Event{
		Type:   events.EventAnswerUpdated,
		PostID: post.ID,
		Seq:    post.Seq,
	})
	return post, nil
}

// RetractAnswer removes the answer, returning the post to the unanswered
// state and reopening visitor edit/delete rights. The post itself is kept.
func (s *QnaService) RetractAnswer(ctx context.Context, id string) (*domain.QnaPost, error) {
	if err := s.posts.ClearAnswer(ctx, id); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.listCache.Invalidate(ctx)
	s.publishEvent(ctx, events.Event{
		Type:   events.EventAnswerRetracted,
		PostID: post.ID,
		Seq:    post.Seq,
	})
	return post, nil
}

// RemovePost deletes a post unconditionally, regardless of answer state.
func (s *QnaService) RemovePost(ctx context.Context, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	s.listCache.Invalidate(ctx)
	s.publishEvent(ctx, events.Event{
		Type:   events.EventQuestionDeletedByStaff,
		PostID: post.ID,
		Seq:    post.Seq,
	})
	return nil
}

// ViewDetail fetches a post and bumps its view counter atomically; the
// returned Views reflects the post-increment value.
func (s *QnaService) ViewDetail(ctx context.Context, id string) (*domain.QnaPost, error) {
	return s.posts.GetAndIncrementViews(ctx, id)
}

// ListPublic returns the contact-free listing, newest first, served from the
// Redis cache when possible.
func (s *QnaService) ListPublic(ctx context.Context) ([]PublicSummary, error) {
	if payload, ok := s.listCache.Get(ctx); ok {
		var cached []PublicSummary
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
		s.listCache.Invalidate(ctx)
	}

	posts, err := s.posts.List(ctx, domain.OrderNewestFirst)
	if err != nil {
		return nil, err
	}
	summaries := make([]PublicSummary, 0, len(posts))
	for i := range posts {
		summaries = append(summaries, publicSummary(&posts[i]))
	}

	if payload, err := json.Marshal(summaries); err == nil {
		s.listCache.Set(ctx, payload)
	}
	return summaries, nil
}

// ListStaff returns all posts with contact fields, unanswered first.
func (s *QnaService) ListStaff(ctx context.Context) ([]domain.QnaPost, error) {
	return s.posts.List(ctx, domain.OrderUnansweredFirst)
}

// authorizeVisitor loads the post and runs the visitor precondition chain:
// the answered lock is reported before the secret is examined.
func (s *QnaService) authorizeVisitor(ctx context.Context, id, secret string) (*domain.QnaPost, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Answered {
		return nil, domain.ErrAlreadyAnswered
	}
	if !auth.VerifySecret(post.SecretHash, secret) {
		return nil, domain.ErrSecretMismatch
	}
	return post, nil
}

func (s *QnaService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func publicSummary(post *domain.QnaPost) PublicSummary {
	return PublicSummary{
		ID:         post.ID,
		Seq:        post.Seq,
		Title:      post.Title,
		AuthorName: post.AuthorName,
		Answered:   post.Answered,
		AnsweredAt: post.AnsweredAt,
		Views:      post.Views,
		CreatedAt:  post.CreatedAt,
	}
}
