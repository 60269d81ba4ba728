package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-service/internal/api/http/handlers"
	"github.com/spec-kit/incident-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Incidents      *handlers.IncidentsHandler
	StaffIncidents *handlers.StaffIncidentsHandler
	Technicians    *handlers.TechniciansHandler
	Catalog        *handlers.CatalogHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Auth.RegisterUser)
	authGroup.Post("/users/login", cfg.Auth.LoginUser)
	authGroup.Post("/technicians/login", cfg.Auth.LoginTechnician)
	authGroup.Post("/admins/login", cfg.Auth.LoginTeamAdmin)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	authProtected.Post("/password/change", cfg.Auth.ChangePassword)
	authProtected.Post("/technicians/logout", auth.RequireTechnician(), cfg.Auth.LogoutTechnician)

	incidents := app.Group("/incidents", cfg.AuthMiddleware.Handle, auth.RequireUser())
	incidents.Post("", cfg.Incidents.CreateIncident)
	incidents.Get("", cfg.Incidents.ListIncidents)
	incidents.Get("/:id", cfg.Incidents.GetIncident)
	incidents.Post("/:id/close", cfg.Incidents.CloseIncident)

	staff := app.Group("/staff/incidents", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	staff.Get("", cfg.StaffIncidents.ListIncidents)
	staff.Get("/:id", cfg.StaffIncidents.GetIncident)
	staff.Patch("/:id", cfg.StaffIncidents.UpdateIncident)

	catalog := app.Group("/catalog", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	catalog.Get("/teams", cfg.Catalog.ListTeams)
	catalog.Get("/categories", cfg.Catalog.ListMainCategories)
	catalog.Get("/categories/:mainID/sub", cfg.Catalog.ListSubCategories)
	catalog.Get("/sub-categories/:subID/items", cfg.Catalog.ListCategoryItems)
	catalog.Get("/locations", cfg.Catalog.ListLocations)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireTeamAdmin())
	admin.Post("/teams", cfg.Catalog.CreateTeam)
	admin.Post("/categories/main", cfg.Catalog.CreateMainCategory)
	admin.Post("/categories/sub", cfg.Catalog.CreateSubCategory)
	admin.Post("/categories/items", cfg.Catalog.CreateCategoryItem)
	admin.Post("/locations", cfg.Catalog.CreateLocation)
	admin.Post("/technicians", cfg.Technicians.CreateTechnician)
	admin.Put("/technicians/:id", cfg.Technicians.UpdateTechnician)
	admin.Get("/technicians/:id", cfg.Technicians.GetTechnician)
	admin.Get("/technicians", cfg.Technicians.ListTechnicians)
	admin.Post("/team-admins", cfg.Technicians.CreateTeamAdmin)
	admin.Get("/team-admins", cfg.Technicians.ListTeamAdmins)
	admin.Post("/sweep", cfg.Admin.TriggerSweep)
	admin.Get("/sweep/stats", cfg.Admin.SweepStats)
}
