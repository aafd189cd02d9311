package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/qna-service/internal/api/dto"
	"github.com/spec-kit/qna-service/internal/service"
	apperrors "github.com/spec-kit/qna-service/pkg/errorutil"
)

// AdminQnaHandler manages the operator endpoints for the answer lifecycle.
type AdminQnaHandler struct {
	qna *service.QnaService
}

// NewAdminQnaHandler constructs handler.
func NewAdminQnaHandler(qnaService *service.QnaService) *AdminQnaHandler {
	return &AdminQnaHandler{qna: qnaService}
}

// ListPosts GET /api/admin/qna. Includes contact fields, unanswered first.
func (h *AdminQnaHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.qna.ListStaff(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.StaffPostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, dto.StaffPost(&posts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AnswerPost POST /api/admin/qna/:id/answer. A failed author notification is
// reported as a warning on the success response.
func (h *AdminQnaHandler) AnswerPost(c *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.qna.Answer(c.UserContext(), c.Params("id"), req.AnswerBody)
	if err != nil {
		return err
	}
	response := fiber.Map{"data": dto.StaffPost(result.Post)}
	if result.NotificationErr != nil {
		response["warnings"] = []fiber.Map{{
			"code":    "NOTIFICATION_FAILED",
			"message": "answer saved but author notification failed",
		}}
	}
	return c.Status(http.StatusCreated).JSON(response)
}

// EditAnswer PUT /api/admin/qna/:id/answer.
func (h *AdminQnaHandler) EditAnswer(c *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	post, err := h.qna.EditAnswer(c.UserContext(), c.Params("id"), req.AnswerBody)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StaffPost(post)})
}

// DeleteAnswer DELETE /api/admin/qna/:id/answer. Reopens the post for its
// author.
func (h *AdminQnaHandler) DeleteAnswer(c *fiber.Ctx) error {
	post, err := h.qna.RetractAnswer(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StaffPost(post)})
}

// DeletePost DELETE /api/admin/qna/:id. Unconditional, any state.
func (h *AdminQnaHandler) DeletePost(c *fiber.Ctx) error {
	if err := h.qna.RemovePost(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
