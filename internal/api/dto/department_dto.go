package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/spec-kit/attendance-service/internal/domain"
)

// DepartmentRequest creates or renames a department.
type DepartmentRequest struct {
	Name string `json:"name"`
}

func (r DepartmentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
	)
}

type DepartmentResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewDepartmentResponse(d *domain.Department) DepartmentResponse {
	return DepartmentResponse{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

func NewDepartmentList(depts []domain.Department) []DepartmentResponse {
	out := make([]DepartmentResponse, 0, len(depts))
	for i := range depts {
		out = append(out, NewDepartmentResponse(&depts[i]))
	}
	return out
}
