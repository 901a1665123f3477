package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/attendance-service/internal/domain"
	"github.com/spec-kit/attendance-service/internal/repository"
	apperrors "github.com/spec-kit/attendance-service/pkg/util"
)

// Employee validation codes.
const (
	CodeInvalidGender       = "INVALID_GENDER"
	CodeInvalidEmployeeType = "INVALID_EMPLOYMENT_TYPE"
)

// EmployeeService manages employees.
type EmployeeService struct {
	employees   repository.EmployeeRepository
	departments repository.DepartmentRepository
}

// EmployeeDependencies bundles repositories for the employee service.
type EmployeeDependencies struct {
	EmployeeRepo   repository.EmployeeRepository
	DepartmentRepo repository.DepartmentRepository
}

// EmployeeInput describes create and update payloads. On update nil fields
// are left unchanged.
type EmployeeInput struct {
	FirstName      *string
	LastName       *string
	Gender         *string
	DepartmentID   *int64
	Address        *string
	EmploymentType *string
}

// NewEmployeeService constructs the service.
func NewEmployeeService(deps EmployeeDependencies) *EmployeeService {
	return &EmployeeService{
		employees:   deps.EmployeeRepo,
		departments: deps.DepartmentRepo,
	}
}

// List returns all employees.
func (s *EmployeeService) List(ctx context.Context) ([]domain.Employee, error) {
	return s.employees.List(ctx)
}

// Get fetches one employee.
func (s *EmployeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, employeeNotFound(id, err)
	}
	return emp, nil
}

// Create validates enums and the department before inserting.
func (s *EmployeeService) Create(ctx context.Context, input EmployeeInput) (*domain.Employee, error) {
	emp := &domain.Employee{}
	if err := s.apply(ctx, emp, input); err != nil {
		return nil, err
	}
	if emp.Gender == "" || emp.Type == "" || emp.DepartmentID == 0 {
		return nil, apperrors.NewValidationError("gender, departmentId and employmentType are required", nil)
	}
	if err := s.employees.Create(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

// Update applies the non-nil fields of input.
func (s *EmployeeService) Update(ctx context.Context, id int64, input EmployeeInput) (*domain.Employee, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, employeeNotFound(id, err)
	}
	if err := s.apply(ctx, emp, input); err != nil {
		return nil, err
	}
	if err := s.employees.Update(ctx, emp); err != nil {
		return nil, employeeNotFound(id, err)
	}
	return emp, nil
}

// Delete removes the employee and returns what was deleted.
func (s *EmployeeService) Delete(ctx context.Context, id int64) (*domain.Employee, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, employeeNotFound(id, err)
	}
	if err := s.employees.Delete(ctx, id); err != nil {
		return nil, employeeNotFound(id, err)
	}
	return emp, nil
}

// ListByDepartment returns employees of an existing department.
func (s *EmployeeService) ListByDepartment(ctx context.Context, departmentID int64) ([]domain.Employee, error) {
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		return nil, departmentNotFound(departmentID, err)
	}
	return s.employees.ListByDepartment(ctx, departmentID)
}

func (s *EmployeeService) apply(ctx context.Context, emp *domain.Employee, input EmployeeInput) error {
	if input.Gender != nil {
		g, ok := domain.ParseGender(*input.Gender)
		if !ok {
			return apperrors.NewBadRequest(CodeInvalidGender, "gender is either MALE or FEMALE", map[string]any{"gender": *input.Gender})
		}
		emp.Gender = g
	}
	if input.EmploymentType != nil {
		t, ok := domain.ParseEmployeeType(*input.EmploymentType)
		if !ok {
			return apperrors.NewBadRequest(CodeInvalidEmployeeType, "employmentType is either MEDICAL or NON_MEDICAL", map[string]any{"employmentType": *input.EmploymentType})
		}
		emp.Type = t
	}
	if input.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *input.DepartmentID); err != nil {
			return departmentNotFound(*input.DepartmentID, err)
		}
		emp.DepartmentID = *input.DepartmentID
	}
	if input.FirstName != nil {
		emp.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		emp.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Address != nil {
		emp.Address = strings.TrimSpace(*input.Address)
	}
	return nil
}

func employeeNotFound(id int64, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("employee", map[string]any{"employeeId": id})
	}
	return err
}
