package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/attendance-service/internal/api/dto"
	"github.com/spec-kit/attendance-service/internal/service"
	apperrors "github.com/spec-kit/attendance-service/pkg/util"
)

// AttendanceHandler exposes the attendance ledger.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// SignIn handles POST /attendance/sign-in.
func (h *AttendanceHandler) SignIn(c *fiber.Ctx) error {
	req := new(dto.SignInRequest)
	if err := bindJSON(c, req); err != nil {
		return err
	}
	rec, err := h.attendance.SignIn(c.UserContext(), req.EmployeeID, req.Notes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OK("Employee signed in successfully.", dto.NewAttendanceResponse(rec)))
}

// SignOut handles PUT /attendance/sign-out/:recordId.
func (h *AttendanceHandler) SignOut(c *fiber.Ctx) error {
	recordID, err := idParam(c, "recordId")
	if err != nil {
		return err
	}
	req := new(dto.SignOutRequest)
	if err := bindJSON(c, req); err != nil {
		return err
	}
	rec, err := h.attendance.SignOut(c.UserContext(), recordID, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Employee signed out successfully.", dto.NewAttendanceResponse(rec)))
}

// SickLeave handles POST /attendance/sick-leave.
func (h *AttendanceHandler) SickLeave(c *fiber.Ctx) error {
	req := new(dto.ExcuseRequest)
	if err := bindJSON(c, req); err != nil {
		return err
	}
	date, err := req.ParsedDate()
	if err != nil {
		return apperrors.NewValidationError("date should be YYYY-MM-DD", map[string]any{"date": req.Date})
	}
	rec, err := h.attendance.RecordSickLeave(c.UserContext(), req.EmployeeID, date, req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Employee registered with sick leave excuse.", dto.NewAttendanceResponse(rec)))
}

// Absence handles POST /attendance/absence.
func (h *AttendanceHandler) Absence(c *fiber.Ctx) error {
	req := new(dto.ExcuseRequest)
	if err := bindJSON(c, req); err != nil {
		return err
	}
	date, err := req.ParsedDate()
	if err != nil {
		return apperrors.NewValidationError("date should be YYYY-MM-DD", map[string]any{"date": req.Date})
	}
	rec, err := h.attendance.RecordAbsence(c.UserContext(), req.EmployeeID, date, req.Notes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OK("Employee registered with absent excuse.", dto.NewAttendanceResponse(rec)))
}

// EmployeeRecords handles GET /attendance/employee/:employeeId.
func (h *AttendanceHandler) EmployeeRecords(c *fiber.Ctx) error {
	employeeID, err := idParam(c, "employeeId")
	if err != nil {
		return err
	}
	start, err := dto.ParseDate(c.Query("startDate"))
	if err != nil {
		return apperrors.NewValidationError("startDate should be YYYY-MM-DD", map[string]any{"startDate": c.Query("startDate")})
	}
	end, err := dto.ParseDate(c.Query("endDate"))
	if err != nil {
		return apperrors.NewValidationError("endDate should be YYYY-MM-DD", map[string]any{"endDate": c.Query("endDate")})
	}

	recs, err := h.attendance.GetRange(c.UserContext(), employeeID, start, end)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK("Employee attendance retrieved.", dto.NewAttendanceList(recs)))
}
