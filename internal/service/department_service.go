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

// CodeDepartmentExists is returned on a duplicate department name.
const CodeDepartmentExists = "DEPARTMENT_EXISTS"

// DepartmentService manages departments.
type DepartmentService struct {
	departments repository.DepartmentRepository
}

// NewDepartmentService constructs the service.
func NewDepartmentService(repo repository.DepartmentRepository) *DepartmentService {
	return &DepartmentService{departments: repo}
}

func (s *DepartmentService) List(ctx context.Context) ([]domain.Department, error) {
	return s.departments.List(ctx)
}

func (s *DepartmentService) Get(ctx context.Context, id int64) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, departmentNotFound(id, err)
	}
	return dept, nil
}

func (s *DepartmentService) Create(ctx context.Context, name string) (*domain.Department, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name cannot be empty", nil)
	}
	dept := &domain.Department{Name: name}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, departmentConflict(name, err)
	}
	return dept, nil
}

func (s *DepartmentService) Update(ctx context.Context, id int64, name string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, departmentNotFound(id, err)
	}
	if name = strings.TrimSpace(name); name != "" {
		dept.Name = name
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, departmentNotFound(id, err)
		}
		return nil, departmentConflict(dept.Name, err)
	}
	return dept, nil
}

// Delete removes the department together with its employees.
func (s *DepartmentService) Delete(ctx context.Context, id int64) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, departmentNotFound(id, err)
	}
	if err := s.departments.Delete(ctx, id); err != nil {
		return nil, departmentNotFound(id, err)
	}
	return dept, nil
}

func departmentNotFound(id int64, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("department", map[string]any{"departmentId": id})
	}
	return err
}

func departmentConflict(name string, err error) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict(CodeDepartmentExists, "department name already exists", map[string]any{"name": name})
	}
	return err
}
