package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/qna-service/internal/domain"
)

// memoryPostRepository is a mutex-guarded in-memory PostRepository. It backs
// the test suite and lets the service boot without a POSTGRES_DSN. All
// mutations run inside one critical section, giving the same serialization
// the SQL guards provide.
type memoryPostRepository struct {
	mu      sync.Mutex
	posts   map[string]*domain.QnaPost
	nextSeq int64
}

// NewMemoryPostRepository returns an empty in-memory repository.
func NewMemoryPostRepository() PostRepository {
	return &memoryPostRepository{posts: make(map[string]*domain.QnaPost)}
}

func (r *memoryPostRepository) Create(ctx context.Context, draft PostDraft) (*domain.QnaPost, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	post := &domain.QnaPost{
		ID:          uuid.NewString(),
		Seq:         r.nextSeq,
		AuthorName:  strings.TrimSpace(draft.AuthorName),
		AuthorEmail: strings.TrimSpace(draft.AuthorEmail),
		AuthorPhone: strings.TrimSpace(draft.AuthorPhone),
		Title:       strings.TrimSpace(draft.Title),
		Body:        strings.TrimSpace(draft.Body),
		SecretHash:  draft.SecretHash,
		CreatedAt:   time.Now(),
	}
	r.posts[post.ID] = post
	return clonePost(post), nil
}

func (r *memoryPostRepository) GetByID(ctx context.Context, id string) (*domain.QnaPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(post), nil
}

func (r *memoryPostRepository) List(ctx context.Context, order domain.ListOrder) ([]domain.QnaPost, error) {
	r.mu.Lock()
	result := make([]domain.QnaPost, 0, len(r.posts))
	for _, post := range r.posts {
		result = append(result, *clonePost(post))
	}
	r.mu.Unlock()

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if order == domain.OrderUnansweredFirst && a.Answered != b.Answered {
			return !a.Answered
		}
		return a.Seq > b.Seq
	})
	return result, nil
}

func (r *memoryPostRepository) GetAndIncrementViews(ctx context.Context, id string) (*domain.QnaPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	post.Views++
	return clonePost(post), nil
}

func (r *memoryPostRepository) UpdateContent(ctx context.Context, id, title, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return domain.ErrPostNotFound
	}
	if post.Answered {
		return domain.ErrAlreadyAnswered
	}
	post.Title = strings.TrimSpace(title)
	post.Body = strings.TrimSpace(body)
	return nil
}

func (r *memoryPostRepository) SetAnswer(ctx context.Context, id, answerBody string, answeredAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return domain.ErrPostNotFound
	}
	if post.Answered {
		return domain.ErrAlreadyAnswered
	}
	post.Answered = true
	post.AnswerBody = &answerBody
	post.AnsweredAt = &answeredAt
	return nil
}

func (r *memoryPostRepository) UpdateAnswer(ctx context.Context, id, answerBody string, answeredAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return domain.ErrPostNotFound
	}
	if !post.Answered {
		return domain.ErrNotAnswered
	}
	post.AnswerBody = &answerBody
	post.AnsweredAt = &answeredAt
	return nil
}

func (r *memoryPostRepository) ClearAnswer(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return domain.ErrPostNotFound
	}
	if !post.Answered {
		return domain.ErrNotAnswered
	}
	post.Answered = false
	post.AnswerBody = nil
	post.AnsweredAt = nil
	return nil
}

func (r *memoryPostRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	delete(r.posts, id)
	return nil
}

func clonePost(post *domain.QnaPost) *domain.QnaPost {
	copied := *post
	if post.AnswerBody != nil {
		body := *post.AnswerBody
		copied.AnswerBody = &body
	}
	if post.AnsweredAt != nil {
		at := *post.AnsweredAt
		copied.AnsweredAt = &at
	}
	return &copied
}
