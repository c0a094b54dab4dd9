package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/echosuccess/participium-sub000/internal/domain"
	"github.com/echosuccess/participium-sub000/internal/repository"
	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller, produced once by this
// middleware and passed explicitly to services.
type Principal struct {
	User *domain.User
	JTI  string
	Exp  time.Time
}

// Role returns the principal's role.
func (p *Principal) Role() domain.Role {
	return p.User.Role
}

// Middleware validates session cookies and loads principals.
type Middleware struct {
	tokens     *TokenManager
	sessions   *SessionStore
	users      repository.UserRepository
	cookieName string
}

// NewMiddleware constructs the authentication middleware.
func NewMiddleware(tokens *TokenManager, sessions *SessionStore, users repository.UserRepository, cookieName string) *Middleware {
	return &Middleware{tokens: tokens, sessions: sessions, users: users, cookieName: cookieName}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	cookie := c.Cookies(m.cookieName)
	if cookie == "" {
		return apperrors.NewUnauthorized("not authenticated")
	}

	claims, err := m.tokens.ParseToken(cookie)
	if err != nil {
		return apperrors.NewUnauthorized("invalid session")
	}
	if m.sessions.IsRevoked(c.UserContext(), claims.ID) {
		return apperrors.NewUnauthorized("session expired")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("account no longer exists")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{User: user, JTI: claims.ID, Exp: claims.ExpiresAt.Time})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
