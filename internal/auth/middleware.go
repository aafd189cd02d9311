package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/qna-service/pkg/errorutil"
)

const operatorKey = "auth_operator"

// Operator represents the authenticated staff caller.
type Operator struct {
	ID string
}

// OperatorMiddleware enforces the operator capability on admin routes.
type OperatorMiddleware struct {
	tokens *TokenManager
}

// NewOperatorMiddleware constructs middleware.
func NewOperatorMiddleware(tokens *TokenManager) *OperatorMiddleware {
	return &OperatorMiddleware{tokens: tokens}
}

// Handle validates the bearer token and loads the operator principal.
func (m *OperatorMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	if claims.Role != OperatorRole {
		return apperrors.NewForbidden("operator role required")
	}

	c.Locals(operatorKey, &Operator{ID: claims.OperatorID})
	return c.Next()
}

// OperatorFromContext retrieves the authenticated operator.
func OperatorFromContext(c *fiber.Ctx) (*Operator, bool) {
	val := c.Locals(operatorKey)
	if val == nil {
		return nil, false
	}
	operator, ok := val.(*Operator)
	return operator, ok
}
