package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/attendance-service/internal/api/dto"
	"github.com/spec-kit/attendance-service/internal/service"
)

// EmployeesHandler exposes employee CRUD.
type EmployeesHandler struct {
	employees *service.EmployeeService
}

func NewEmployeesHandler(employees *service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{employees: employees}
}

func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	emps, err := h.employees.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("All employees list retrieved.", dto.NewEmployeeList(emps)))
}

func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	emp, err := h.employees.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Employee details found.", dto.NewEmployeeResponse(emp)))
}

func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	req := new(dto.EmployeeRequest)
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := dto.ValidationError(req.ValidateCreate()); err != nil {
		return err
	}
	emp, err := h.employees.Create(c.UserContext(), req.Input())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OK("New employee details created.", dto.NewEmployeeResponse(emp)))
}

func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	req := new(dto.EmployeeRequest)
	if err := bindJSON(c, req); err != nil {
		return err
	}
	emp, err := h.employees.Update(c.UserContext(), id, req.Input())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Employee details updated.", dto.NewEmployeeResponse(emp)))
}

// Delete is restricted to ADMIN by the router.
func (h *EmployeesHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	emp, err := h.employees.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Employee details deleted.", dto.NewEmployeeResponse(emp)))
}
