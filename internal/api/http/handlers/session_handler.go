package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/echosuccess/participium-sub000/internal/api/dto"
	"github.com/echosuccess/participium-sub000/internal/auth"
	"github.com/echosuccess/participium-sub000/internal/config"
	"github.com/echosuccess/participium-sub000/internal/service"
	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

// SessionHandler manages login, logout and session introspection.
type SessionHandler struct {
	accounts *service.AccountService
	cfg      config.AuthConfig
}

// NewSessionHandler constructs handler.
func NewSessionHandler(accounts *service.AccountService, cfg config.AuthConfig) *SessionHandler {
	return &SessionHandler{accounts: accounts, cfg: cfg}
}

// Login handles POST /api/session.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewBadRequest("email and password required")
	}

	user, token, claims, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Expires:  claims.ExpiresAt.Time,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromUser(user)})
}

// Logout handles DELETE /api/session/current.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	if err := h.accounts.Logout(c.UserContext(), principal); err != nil {
		return apperrors.MapError(err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.SendStatus(http.StatusNoContent)
}

// Current handles GET /api/session/current.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(principal.User)})
}
