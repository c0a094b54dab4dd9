package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/echosuccess/participium-sub000/internal/api/dto"
	"github.com/echosuccess/participium-sub000/internal/auth"
	"github.com/echosuccess/participium-sub000/internal/domain"
	"github.com/echosuccess/participium-sub000/internal/service"
	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

// CitizenHandler exposes signup, verification and profile endpoints.
type CitizenHandler struct {
	accounts *service.AccountService
}

// NewCitizenHandler constructs handler.
func NewCitizenHandler(accounts *service.AccountService) *CitizenHandler {
	return &CitizenHandler{accounts: accounts}
}

// Signup handles POST /api/citizen/signup.
func (h *CitizenHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	user, err := h.accounts.SignupCitizen(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromUser(user)})
}

// Verify handles POST /api/citizen/verify.
func (h *CitizenHandler) Verify(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Email == "" || req.Code == "" {
		return apperrors.NewBadRequest("email and code required")
	}
	message, err := h.accounts.VerifyEmail(c.UserContext(), req.Email, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": message})
}

// ResendVerification handles POST /api/citizen/resend-verification.
func (h *CitizenHandler) ResendVerification(c *fiber.Ctx) error {
	var req dto.ResendVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Email == "" {
		return apperrors.NewBadRequest("email required")
	}
	if err := h.accounts.ResendVerification(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "verification code sent"})
}

// Me handles GET /api/citizen/me.
func (h *CitizenHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	resp := dto.FromUser(principal.User)
	if photo, err := h.accounts.GetProfilePhoto(c.UserContext(), principal.User.ID); err == nil && photo != nil {
		resp.PhotoURL = &photo.URL
	}
	return c.JSON(fiber.Map{"data": resp})
}

// UpdateMe handles PATCH /api/citizen/me.
func (h *CitizenHandler) UpdateMe(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	input := service.ProfileUpdateInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		TelegramHandle: req.TelegramHandle,
		TelegramChatID: req.TelegramChatID,
	}
	if req.NotificationPref != nil {
		pref := domain.NotificationPreference(*req.NotificationPref)
		input.NotificationPref = &pref
	}
	user, err := h.accounts.UpdateProfile(c.UserContext(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromUser(user)})
}

// UploadPhoto handles POST /api/citizen/me/photo.
func (h *CitizenHandler) UploadPhoto(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewBadRequest("multipart form required")
	}
	files := form.File["photo"]
	if len(files) != 1 {
		return apperrors.NewBadRequest("exactly one photo file required")
	}
	file, err := files[0].Open()
	if err != nil {
		return apperrors.NewBadRequest("unreadable photo file")
	}
	defer file.Close()

	photo, err := h.accounts.SetProfilePhoto(c.UserContext(), principal.User.ID, files[0].Filename, file)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{
		"url":      photo.URL,
		"filename": photo.Filename,
	}})
}

// DeletePhoto handles DELETE /api/citizen/me/photo.
func (h *CitizenHandler) DeletePhoto(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	if err := h.accounts.DeleteProfilePhoto(c.UserContext(), principal.User.ID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
