package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/spec-kit/attendance-service/internal/domain"
)

// SignInRequest registers today's sign-in.
type SignInRequest struct {
	EmployeeID int64  `json:"employeeId"`
	Notes      string `json:"notes"`
}

func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EmployeeID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

// SignOutRequest carries optional notes appended at sign-out.
type SignOutRequest struct {
	Notes string `json:"notes"`
}

func (r SignOutRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

// ExcuseRequest registers sick leave or absence. Date is YYYY-MM-DD and
// defaults to today.
type ExcuseRequest struct {
	EmployeeID int64  `json:"employeeId"`
	Date       string `json:"date"`
	Notes      string `json:"notes"`
}

func (r ExcuseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.EmployeeID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Date, validation.Date(domain.DateLayout)),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

// ParsedDate returns nil when Date is empty. Call after Validate.
func (r ExcuseRequest) ParsedDate() (*time.Time, error) {
	return ParseDate(r.Date)
}

// ParseDate parses an optional YYYY-MM-DD value.
func ParseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AttendanceResponse is the wire form of a record.
type AttendanceResponse struct {
	ID          int64      `json:"id"`
	EmployeeID  int64      `json:"employeeId"`
	Date        string     `json:"date"`
	Kind        string     `json:"kind"`
	SignInTime  *time.Time `json:"signInTime"`
	SignOutTime *time.Time `json:"signOutTime"`
	Notes       string     `json:"notes"`
}

// NewAttendanceResponse maps a record.
func NewAttendanceResponse(rec *domain.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:          rec.ID,
		EmployeeID:  rec.EmployeeID,
		Date:        rec.Date.Format(domain.DateLayout),
		Kind:        string(rec.Kind),
		SignInTime:  rec.SignInTime,
		SignOutTime: rec.SignOutTime,
		Notes:       rec.Notes,
	}
}

// NewAttendanceList maps records, never returning nil.
func NewAttendanceList(recs []domain.AttendanceRecord) []AttendanceResponse {
	out := make([]AttendanceResponse, 0, len(recs))
	for i := range recs {
		out = append(out, NewAttendanceResponse(&recs[i]))
	}
	return out
}
