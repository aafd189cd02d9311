package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/qna-service/internal/api/http/handlers"
	"github.com/spec-kit/qna-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health             *handlers.HealthHandler
	Qna                *handlers.QnaHandler
	AdminQna           *handlers.AdminQnaHandler
	OperatorMiddleware *auth.OperatorMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	public := app.Group("/api/qna")
	public.Post("/", cfg.Qna.SubmitPost)
	public.Get("/", cfg.Qna.ListPosts)
	public.Get("/:id", cfg.Qna.GetPost)
	public.Put("/:id", cfg.Qna.EditPost)
	public.Delete("/:id", cfg.Qna.DeletePost)
	public.Post("/:id/verify", cfg.Qna.VerifySecret)

	admin := app.Group("/api/admin/qna", cfg.OperatorMiddleware.Handle)
	admin.Get("/", cfg.AdminQna.ListPosts)
	admin.Post("/:id/answer", cfg.AdminQna.AnswerPost)
	admin.Put("/:id/answer", cfg.AdminQna.EditAnswer)
	admin.Delete("/:id/answer", cfg.AdminQna.DeleteAnswer)
	admin.Delete("/:id", cfg.AdminQna.DeletePost)
}
