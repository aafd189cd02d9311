package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/qna-service/internal/api/dto"
	"github.com/spec-kit/qna-service/internal/service"
	apperrors "github.com/spec-kit/qna-service/pkg/errorutil"
)

// QnaHandler manages the public board endpoints.
type QnaHandler struct {
	qna *service.QnaService
}

// NewQnaHandler constructs handler.
func NewQnaHandler(qnaService *service.QnaService) *QnaHandler {
	return &QnaHandler{qna: qnaService}
}

// SubmitPost POST /api/qna.
func (h *QnaHandler) SubmitPost(c *fiber.Ctx) error {
	var req dto.SubmitPostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	post, err := h.qna.Submit(c.UserContext(), service.SubmitInput{
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		AuthorPhone: req.AuthorPhone,
		Title:       req.Title,
		Body:        req.Body,
		Secret:      req.Secret,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.PostDetail(post)})
}

// ListPosts GET /api/qna.
func (h *QnaHandler) ListPosts(c *fiber.Ctx) error {
	summaries, err := h.qna.ListPublic(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaries})
}

// GetPost GET /api/qna/:id. Increments the view counter.
func (h *QnaHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.qna.ViewDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PostDetail(post)})
}

// EditPost PUT /api/qna/:id.
func (h *QnaHandler) EditPost(c *fiber.Ctx) error {
	var req dto.EditPostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	post, err := h.qna.VisitorEdit(c.UserContext(), c.Params("id"), req.Secret, req.Title, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PostDetail(post)})
}

// DeletePost DELETE /api/qna/:id.
func (h *QnaHandler) DeletePost(c *fiber.Ctx) error {
	var req dto.DeletePostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.qna.VisitorDelete(c.UserContext(), c.Params("id"), req.Secret); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// VerifySecret POST /api/qna/:id/verify.
func (h *QnaHandler) VerifySecret(c *fiber.Ctx) error {
	var req dto.VerifySecretRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.qna.VerifySecret(c.UserContext(), c.Params("id"), req.Secret)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}
