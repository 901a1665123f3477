package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/attendance-service/internal/api/http/handlers"
	"github.com/spec-kit/attendance-service/internal/auth"
	"github.com/spec-kit/attendance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Users       *handlers.UsersHandler
	Attendance  *handlers.AttendanceHandler
	Employees   *handlers.EmployeesHandler
	Departments *handlers.DepartmentsHandler
	Gate        *auth.Gate
}

// RegisterRoutes wires HTTP routes. The gate runs ahead of every route and
// lets the public allow-list through.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.Authenticate, cfg.Gate.Authorize)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/verify-username/:username", cfg.Users.VerifyUsername)
	authGroup.Post("/reset-password", cfg.Users.ResetPassword)

	attendance := app.Group("/attendance")
	attendance.Post("/sign-in", cfg.Attendance.SignIn)
	attendance.Put("/sign-out/:recordId", cfg.Attendance.SignOut)
	attendance.Post("/sick-leave", cfg.Attendance.SickLeave)
	attendance.Post("/absence", cfg.Attendance.Absence)
	attendance.Get("/employee/:employeeId", cfg.Attendance.EmployeeRecords)

	adminOnly := auth.RequireRole(domain.RoleAdmin)

	employees := app.Group("/employees")
	employees.Get("/", cfg.Employees.List)
	employees.Post("/", cfg.Employees.Create)
	employees.Get("/:id", cfg.Employees.Get)
	employees.Put("/:id", cfg.Employees.Update)
	employees.Delete("/:id", adminOnly, cfg.Employees.Delete)

	departments := app.Group("/departments")
	departments.Get("/", cfg.Departments.List)
	departments.Post("/", cfg.Departments.Create)
	departments.Get("/:id", cfg.Departments.Get)
	departments.Put("/:id", cfg.Departments.Update)
	departments.Delete("/:id", adminOnly, cfg.Departments.Delete)
	departments.Get("/:id/employees", cfg.Departments.Employees)
}
