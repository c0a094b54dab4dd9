package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/echosuccess/participium-sub000/internal/api/dto"
	"github.com/echosuccess/participium-sub000/internal/domain"
	"github.com/echosuccess/participium-sub000/internal/service"
	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

// AdminHandler exposes administrator tooling for municipality accounts.
type AdminHandler struct {
	accounts *service.AccountService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(accounts *service.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

// CreateUser handles POST /api/admin/municipality-users.
func (h *AdminHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateMunicipalityUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	input := service.MunicipalityUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	}
	if req.Department != nil {
		dept := domain.Department(*req.Department)
		input.Department = &dept
	}
	user, err := h.accounts.CreateMunicipalityUser(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromUser(user)})
}

// ListUsers handles GET /api/admin/municipality-users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.accounts.ListMunicipalityUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

// GetUser handles GET /api/admin/municipality-users/:id.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}
	user, err := h.accounts.GetMunicipalityUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// UpdateUser handles PATCH /api/admin/municipality-users/:id.
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMunicipalityUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	input := service.MunicipalityUserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		input.Role = &role
	}
	if req.Department != nil {
		dept := domain.Department(*req.Department)
		input.Department = &dept
	}
	user, err := h.accounts.UpdateMunicipalityUser(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// DeleteUser handles DELETE /api/admin/municipality-users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}
	if err := h.accounts.DeleteMunicipalityUser(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListRoles handles GET /api/admin/roles.
func (h *AdminHandler) ListRoles(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.accounts.MunicipalityRoles()})
}

func parseUserID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewBadRequest("user id must be an integer")
	}
	return id, nil
}
