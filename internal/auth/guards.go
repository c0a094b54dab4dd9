package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/echosuccess/participium-sub000/internal/authz"
	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

// Require returns a guard that rejects callers whose role is not granted the
// action by the policy. Authentication failures surface as 401 from the auth
// middleware; a present-but-unprivileged principal yields 403.
func Require(policy *authz.Policy, action authz.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("not authenticated")
		}
		if !policy.Allows(principal.Role(), action) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
