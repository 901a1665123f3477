package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/spec-kit/attendance-service/internal/domain"
	"github.com/spec-kit/attendance-service/internal/service"
)

// EmployeeRequest is shared by create and update. On update omitted fields
// keep their value.
type EmployeeRequest struct {
	FirstName      *string `json:"firstName"`
	LastName       *string `json:"lastName"`
	Gender         *string `json:"gender"`
	DepartmentID   *int64  `json:"departmentId"`
	Address        *string `json:"address"`
	EmploymentType *string `json:"employmentType"`
}

// ValidateCreate requires every field but address.
func (r EmployeeRequest) ValidateCreate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Gender, validation.Required),
		validation.Field(&r.DepartmentID, validation.Required),
		validation.Field(&r.Address, validation.Length(0, 255)),
		validation.Field(&r.EmploymentType, validation.Required),
	)
}

// Validate checks lengths of the fields present.
func (r EmployeeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Address, validation.Length(0, 255)),
	)
}

// Input converts the request for the service.
func (r EmployeeRequest) Input() service.EmployeeInput {
	return service.EmployeeInput{
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Gender:         r.Gender,
		DepartmentID:   r.DepartmentID,
		Address:        r.Address,
		EmploymentType: r.EmploymentType,
	}
}

// EmployeeResponse is the wire form of an employee.
type EmployeeResponse struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Gender         string    `json:"gender"`
	DepartmentID   int64     `json:"departmentId"`
	Address        string    `json:"address"`
	EmploymentType string    `json:"employmentType"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func NewEmployeeResponse(e *domain.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:             e.ID,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		Gender:         string(e.Gender),
		DepartmentID:   e.DepartmentID,
		Address:        e.Address,
		EmploymentType: string(e.Type),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func NewEmployeeList(emps []domain.Employee) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(emps))
	for i := range emps {
		out = append(out, NewEmployeeResponse(&emps[i]))
	}
	return out
}
