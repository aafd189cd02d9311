package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/qna-service/internal/domain"
)

// PostDraft carries the validated input for a new post. The secret arrives
// already digested; the plaintext never reaches the repository.
type PostDraft struct {
	AuthorName  string
	AuthorEmail string
	AuthorPhone string
	Title       string
	Body        string
	SecretHash  string
}

// PostRepository encapsulates Q&A post persistence.
//
// The answer-state guards live here: SetAnswer, UpdateAnswer, ClearAnswer and
// UpdateContent are conditional on the current answered flag so that
// concurrent staff and visitor mutations serialize to one consistent outcome.
type PostRepository interface {
	Create(ctx context.Context, draft PostDraft) (*domain.QnaPost, error)
	GetByID(ctx context.Context, id string) (*domain.QnaPost, error)
	List(ctx context.Context, order domain.ListOrder) ([]domain.QnaPost, error)
	// GetAndIncrementViews bumps the view counter and returns the
	// post-increment row in one atomic step.
	GetAndIncrementViews(ctx context.Context, id string) (*domain.QnaPost, error)
	// UpdateContent replaces title/body only while the post is unanswered.
	UpdateContent(ctx context.Context, id, title, body string) error
	// SetAnswer attaches an answer only while the post is unanswered.
	SetAnswer(ctx context.Context, id, answerBody string, answeredAt time.Time) error
	// UpdateAnswer replaces an existing answer and refreshes its timestamp.
	UpdateAnswer(ctx context.Context, id, answerBody string, answeredAt time.Time) error
	// ClearAnswer removes an existing answer, returning the post to the
	// unanswered state. Flag and both answer fields change together.
	ClearAnswer(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

const postColumns = `id, seq, author_name, author_email, author_phone, title, body,
               secret_hash, answered, answer_body, answered_at, views, created_at`

type postRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository instantiates the Postgres-backed repository.
func NewPostRepository(pool *pgxpool.Pool) PostRepository {
	return &postRepository{pool: pool}
}

func (r *postRepository) Create(ctx context.Context, draft PostDraft) (*domain.QnaPost, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}
	const query = `
        INSERT INTO qna_posts (author_name, author_email, author_phone, title, body, secret_hash)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, seq, views, created_at`
	post := &domain.QnaPost{
		AuthorName:  strings.TrimSpace(draft.AuthorName),
		AuthorEmail: strings.TrimSpace(draft.AuthorEmail),
		AuthorPhone: strings.TrimSpace(draft.AuthorPhone),
		Title:       strings.TrimSpace(draft.Title),
		Body:        strings.TrimSpace(draft.Body),
		SecretHash:  draft.SecretHash,
	}
	err := r.pool.QueryRow(ctx, query,
		post.AuthorName,
		post.AuthorEmail,
		post.AuthorPhone,
		post.Title,
		post.Body,
		post.SecretHash,
	).Scan(&post.ID, &post.Seq, &post.Views, &post.CreatedAt)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func validateDraft(draft PostDraft) error {
	missing := []string{}
	check := func(name, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name)
		}
	}
	check("author_name", draft.AuthorName)
	check("author_email", draft.AuthorEmail)
	check("author_phone", draft.AuthorPhone)
	check("title", draft.Title)
	check("body", draft.Body)
	check("secret", draft.SecretHash)
	if len(missing) > 0 {
		return domain.NewValidationError(missing...)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*domain.QnaPost, error) {
	const query = `SELECT ` + postColumns + ` FROM qna_posts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *postRepository) GetAndIncrementViews(ctx context.Context, id string) (*domain.QnaPost, error) {
	const query = `
        UPDATE qna_posts SET views = views + 1 WHERE id=$1
        RETURNING ` + postColumns
	return r.fetchSingle(ctx, query, id)
}

func (r *postRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.QnaPost, error) {
	var post domain.QnaPost
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&post.ID,
		&post.Seq,
		&post.AuthorName,
		&post.AuthorEmail,
		&post.AuthorPhone,
		&post.Title,
		&post.Body,
		&post.SecretHash,
		&post.Answered,
		&post.AnswerBody,
		&post.AnsweredAt,
		&post.Views,
		&post.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, order domain.ListOrder) ([]domain.QnaPost, error) {
	query := `SELECT ` + postColumns + ` FROM qna_posts ORDER BY created_at DESC, seq DESC`
	if order == domain.OrderUnansweredFirst {
		query = `SELECT ` + postColumns + ` FROM qna_posts ORDER BY answered ASC, created_at DESC, seq DESC`
	}
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

func (r *postRepository) UpdateContent(ctx context.Context, id, title, body string) error {
	const query = `UPDATE qna_posts SET title=$2, body=$3 WHERE id=$1 AND answered = FALSE`
	cmd, err := r.pool.Exec(ctx, query, id, strings.TrimSpace(title), strings.TrimSpace(body))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.stateConflict(ctx, id, domain.ErrAlreadyAnswered)
	}
	return nil
}

func (r *postRepository) SetAnswer(ctx context.Context, id, answerBody string, answeredAt time.Time) error {
	const query = `
        UPDATE qna_posts SET answered = TRUE, answer_body=$2, answered_at=$3
        WHERE id=$1 AND answered = FALSE`
	cmd, err := r.pool.Exec(ctx, query, id, answerBody, answeredAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.stateConflict(ctx, id, domain.ErrAlreadyAnswered)
	}
	return nil
}

func (r *postRepository) UpdateAnswer(ctx context.Context, id, answerBody string, answeredAt time.Time) error {
	const query = `
        UPDATE qna_posts SET answer_body=$2, answered_at=$3
        WHERE id=$1 AND answered = TRUE`
	cmd, err := r.pool.Exec(ctx, query, id, answerBody, answeredAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.stateConflict(ctx, id, domain.ErrNotAnswered)
	}
	return nil
}

func (r *postRepository) ClearAnswer(ctx context.Context, id string) error {
	const query = `
        UPDATE qna_posts SET answered = FALSE, answer_body=NULL, answered_at=NULL
        WHERE id=$1 AND answered = TRUE`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.stateConflict(ctx, id, domain.ErrNotAnswered)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM qna_posts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// stateConflict distinguishes "row gone" from "row in the other answer state"
// after a guarded update matched nothing.
func (r *postRepository) stateConflict(ctx context.Context, id string, conflict error) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return conflict
}

func scanPosts(rows pgx.Rows) ([]domain.QnaPost, error) {
	var result []domain.QnaPost
	for rows.Next() {
		var post domain.QnaPost
		if err := rows.Scan(
			&post.ID,
			&post.Seq,
			&post.AuthorName,
			&post.AuthorEmail,
			&post.AuthorPhone,
			&post.Title,
			&post.Body,
			&post.SecretHash,
			&post.Answered,
			&post.AnswerBody,
			&post.AnsweredAt,
			&post.Views,
			&post.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, post)
	}
	return result, rows.Err()
}
