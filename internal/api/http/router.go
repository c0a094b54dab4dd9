package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/echosuccess/participium-sub000/internal/api/http/handlers"
	"github.com/echosuccess/participium-sub000/internal/auth"
	"github.com/echosuccess/participium-sub000/internal/authz"
	"github.com/echosuccess/participium-sub000/internal/geo"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Session        *handlers.SessionHandler
	Citizen        *handlers.CitizenHandler
	Reports        *handlers.ReportsHandler
	Admin          *handlers.AdminHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.Middleware
	Policy         *authz.Policy
	Geofence       *geo.Validator
	StaticRoot     string
	StaticPrefix   string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.StaticRoot != "" {
		app.Static(cfg.StaticPrefix, cfg.StaticRoot)
	}

	api := app.Group("/api")

	citizen := api.Group("/citizen")
	citizen.Post("/signup", cfg.Citizen.Signup)
	citizen.Post("/verify", cfg.Citizen.Verify)
	citizen.Post("/resend-verification", cfg.Citizen.ResendVerification)

	session := api.Group("/session")
	session.Post("", cfg.Session.Login)
	session.Get("/current", cfg.AuthMiddleware.Handle, cfg.Session.Current)
	session.Delete("/current", cfg.AuthMiddleware.Handle, cfg.Session.Logout)

	me := citizen.Group("/me", cfg.AuthMiddleware.Handle, auth.Require(cfg.Policy, authz.ActionManageOwnProfile))
	me.Get("", cfg.Citizen.Me)
	me.Patch("", cfg.Citizen.UpdateMe)
	me.Post("/photo", cfg.Citizen.UploadPhoto)
	me.Delete("/photo", cfg.Citizen.DeletePhoto)

	reports := api.Group("/reports", cfg.AuthMiddleware.Handle)
	reports.Post("",
		auth.Require(cfg.Policy, authz.ActionCreateReport),
		geo.BoundaryCheck(cfg.Geofence),
		cfg.Reports.Create)
	reports.Get("", auth.Require(cfg.Policy, authz.ActionViewReports), cfg.Reports.ListPublished)
	reports.Get("/pending", auth.Require(cfg.Policy, authz.ActionListPendingReports), cfg.Reports.ListPending)
	reports.Get("/assigned", auth.Require(cfg.Policy, authz.ActionUpdateReportStatus), cfg.Reports.ListAssigned)
	reports.Get("/:id", auth.Require(cfg.Policy, authz.ActionViewReports), cfg.Reports.Get)
	reports.Get("/:id/messages", auth.Require(cfg.Policy, authz.ActionViewReports), cfg.Reports.ListMessages)
	reports.Post("/:id/messages", auth.Require(cfg.Policy, authz.ActionSendReportMessage), cfg.Reports.CreateMessage)
	reports.Post("/:id/approve", auth.Require(cfg.Policy, authz.ActionApproveReport), cfg.Reports.Approve)
	reports.Post("/:id/reject", auth.Require(cfg.Policy, authz.ActionRejectReport), cfg.Reports.Reject)
	reports.Patch("/:id/status", auth.Require(cfg.Policy, authz.ActionUpdateReportStatus), cfg.Reports.UpdateStatus)
	reports.Get("/:id/assignable-technicals", auth.Require(cfg.Policy, authz.ActionListAssignable), cfg.Reports.AssignableTechnicals)
	reports.Get("/:id/assignable-externals", auth.Require(cfg.Policy, authz.ActionListAssignable), cfg.Reports.AssignableExternals)
	reports.Post("/:id/assign-external", auth.Require(cfg.Policy, authz.ActionAssignExternal), cfg.Reports.AssignExternal)

	admin := api.Group("/admin", cfg.AuthMiddleware.Handle, auth.Require(cfg.Policy, authz.ActionManageAccounts))
	admin.Post("/municipality-users", cfg.Admin.CreateUser)
	admin.Get("/municipality-users", cfg.Admin.ListUsers)
	admin.Get("/municipality-users/:id", cfg.Admin.GetUser)
	admin.Patch("/municipality-users/:id", cfg.Admin.UpdateUser)
	admin.Delete("/municipality-users/:id", cfg.Admin.DeleteUser)
	admin.Get("/roles", cfg.Admin.ListRoles)

	notifications := api.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("", cfg.Notifications.List)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
}
