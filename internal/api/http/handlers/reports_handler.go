package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/echosuccess/participium-sub000/internal/api/dto"
	"github.com/echosuccess/participium-sub000/internal/auth"
	"github.com/echosuccess/participium-sub000/internal/domain"
	"github.com/echosuccess/participium-sub000/internal/service"
	"github.com/echosuccess/participium-sub000/pkg/apperrors"
)

// ReportsHandler manages report lifecycle endpoints.
type ReportsHandler struct {
	reports  *service.ReportService
	messages *service.MessageService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService, messages *service.MessageService) *ReportsHandler {
	return &ReportsHandler{reports: reports, messages: messages}
}

// Create handles POST /api/reports (multipart, 1-3 photos).
func (h *ReportsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}

	latStr := c.FormValue("latitude")
	lngStr := c.FormValue("longitude")
	if latStr == "" || lngStr == "" {
		return apperrors.NewBadRequest("missing required field(s): latitude, longitude")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return apperrors.NewBadRequest("latitude must be numeric")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return apperrors.NewBadRequest("longitude must be numeric")
	}
	isAnonymous := false
	if anonStr := c.FormValue("is_anonymous"); anonStr != "" {
		isAnonymous, err = strconv.ParseBool(anonStr)
		if err != nil {
			return apperrors.NewBadRequest("is_anonymous must be a boolean")
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewBadRequest("multipart form required")
	}
	files := form.File["photos"]
	if len(files) < domain.MinReportPhotos || len(files) > domain.MaxReportPhotos {
		return apperrors.NewBadRequest("between 1 and 3 photos required")
	}
	photos := make([]service.PhotoUpload, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return apperrors.NewBadRequest("unreadable photo file")
		}
		defer file.Close()
		photos = append(photos, service.PhotoUpload{Filename: header.Filename, Content: file})
	}

	input := service.ReportCreateInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Category:    domain.Category(c.FormValue("category")),
		Latitude:    lat,
		Longitude:   lng,
		Address:     c.FormValue("address"),
		IsAnonymous: isAnonymous,
		Photos:      photos,
	}
	report, err := h.reports.CreateReport(c.UserContext(), principal.User, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromReport(report, true)})
}

// ListPublished handles GET /api/reports.
func (h *ReportsHandler) ListPublished(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	reports, err := h.reports.ListPublished(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponses(reports, principal)})
}

// ListPending handles GET /api/reports/pending.
func (h *ReportsHandler) ListPending(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	reports, err := h.reports.ListPending(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponses(reports, principal)})
}

// ListAssigned handles GET /api/reports/assigned.
func (h *ReportsHandler) ListAssigned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	reports, err := h.reports.ListAssigned(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reportResponses(reports, principal)})
}

// Get handles GET /api/reports/:id.
func (h *ReportsHandler) Get(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	reportID, err := parseReportID(c)
	if err != nil {
		return err
	}
	report, err := h.reports.GetReport(c.UserContext(), reportID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromReport(report, revealReporter(report, principal))})
}

// Approve handles POST /api/reports/:id/approve.
func (h *ReportsHandler) Approve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	reportID, err := parseReportID(c)
	if err != nil {
		return err
	}
	var req dto.ApproveReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.AssigneeID == 0 {
		return apperrors.NewBadRequest("assignee_id required")
	}
	report, err := h.reports.ApproveReport(c.UserContext(), principal.User, reportID, req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromReport(report, true)})
}

// Reject handles POST /api/reports/:id/reject.
func (h *ReportsHandler) Reject(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	reportID, err := parseReportID(c)
	if err != nil {
		return err
	}
	var req dto.RejectReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	report, err := h.reports.RejectReport(c.UserContext(), principal.User, reportID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromReport(report, true)})
}

// UpdateStatus handles PATCH /api/reports/:id/status.
func (h *ReportsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	reportID, err := parseReportID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.Status == "" {
		return apperrors.NewBadRequest("status required")
	}
	report, err := h.reports.UpdateStatus(c.UserContext(), principal.User, reportID, domain.ReportStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromReport(report, true)})
}

// AssignableTechnicals handles GET /api/reports/:id/assignable-technicals.
func (h *ReportsHandler) AssignableTechnicals(c *fiber.Ctx) error {
	reportID, err := parseReportID(c)
	if err != nil {
		return err
	}
	users, err := h.reports.AssignableTechnicals(c.UserContext(), reportID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

// AssignableExternals handles GET /api/reports/:id/assignable-externals.
func (h *ReportsHandler) AssignableExternals(c *fiber.Ctx) error {
	reportID, err := parseReportID(c)
	if err != nil {
		return err
	}
	users, err := h.reports.AssignableExternals(c.UserContext(), reportID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponses(users)})
}

// AssignExternal handles POST /api/reports/:id/assign-external.
func (h *ReportsHandler) AssignExternal(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	reportID, err := parseReportID(c)
	if err != nil {
		return err
	}
	var req dto.AssignExternalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	if req.ExternalID == 0 {
		return apperrors.NewBadRequest("external_id required")
	}
	report, err := h.reports.AssignExternal(c.UserContext(), principal.User, reportID, req.ExternalID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromReport(report, true)})
}

// ListMessages handles GET /api/reports/:id/messages.
func (h *ReportsHandler) ListMessages(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	reportID, err := parseReportID(c)
	if err != nil {
		return err
	}
	msgs, err := h.messages.ListForReport(c.UserContext(), principal.User, reportID)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, dto.FromMessage(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateMessage handles POST /api/reports/:id/messages.
func (h *ReportsHandler) CreateMessage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}
	reportID, err := parseReportID(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("invalid payload")
	}
	msg, err := h.messages.Append(c.UserContext(), principal.User, reportID, req.Content, req.Internal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromMessage(msg)})
}

func parseReportID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperrors.NewBadRequest("report id must be an integer")
	}
	return id, nil
}

// revealReporter decides whether the response may include the reporter's id:
// non-anonymous reports always do; anonymous ones only for the owner and for
// municipal staff working the report.
func revealReporter(report *domain.Report, principal *auth.Principal) bool {
	if !report.IsAnonymous {
		return true
	}
	if principal == nil {
		return false
	}
	if principal.User.Role != domain.RoleCitizen {
		return true
	}
	return report.CitizenID == principal.User.ID
}

func reportResponses(reports []domain.Report, principal *auth.Principal) []dto.ReportResponse {
	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, dto.FromReport(&reports[i], revealReporter(&reports[i], principal)))
	}
	return items
}

func userResponses(users []domain.User) []dto.UserResponse {
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.FromUser(&users[i]))
	}
	return items
}
