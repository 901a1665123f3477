package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/attendance-service/internal/api/dto"
	"github.com/spec-kit/attendance-service/internal/service"
)

// DepartmentsHandler exposes department CRUD.
type DepartmentsHandler struct {
	departments *service.DepartmentService
	employees   *service.EmployeeService
}

func NewDepartmentsHandler(departments *service.DepartmentService, employees *service.EmployeeService) *DepartmentsHandler {
	return &DepartmentsHandler{departments: departments, employees: employees}
}

func (h *DepartmentsHandler) List(c *fiber.Ctx) error {
	depts, err := h.departments.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("All departments list retrieved.", dto.NewDepartmentList(depts)))
}

func (h *DepartmentsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	dept, err := h.departments.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Department details found.", dto.NewDepartmentResponse(dept)))
}

func (h *DepartmentsHandler) Create(c *fiber.Ctx) error {
	req := new(dto.DepartmentRequest)
	if err := bindJSON(c, req); err != nil {
		return err
	}
	dept, err := h.departments.Create(c.UserContext(), req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OK("Department details saved.", dto.NewDepartmentResponse(dept)))
}

func (h *DepartmentsHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	req := new(dto.DepartmentRequest)
	if err := bindJSON(c, req); err != nil {
		return err
	}
	dept, err := h.departments.Update(c.UserContext(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Department details updated.", dto.NewDepartmentResponse(dept)))
}

// Delete is restricted to ADMIN by the router. Employees of the department
// are removed with it.
func (h *DepartmentsHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	dept, err := h.departments.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Department details deleted.", dto.NewDepartmentResponse(dept)))
}

func (h *DepartmentsHandler) Employees(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	emps, err := h.employees.ListByDepartment(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(fmt.Sprintf("Employees retrieved for department %d.", id), dto.NewEmployeeList(emps)))
}
