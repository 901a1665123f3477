package domain

import "time"

// AttendanceKind classifies a day for an employee.
type AttendanceKind string

const (
	AttendancePresent   AttendanceKind = "PRESENT"
	AttendanceSickLeave AttendanceKind = "SICK_LEAVE"
	AttendanceAbsent    AttendanceKind = "ABSENT"
)

// DateLayout is the ISO calendar date format used on the wire.
const DateLayout = "2006-01-02"

// AttendanceRecord is the single row for an (employee, date) pair.
type AttendanceRecord struct {
	ID          int64
	EmployeeID  int64
	Date        time.Time
	Kind        AttendanceKind
	SignInTime  *time.Time
	SignOutTime *time.Time
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SignedIn reports whether the record is a present day with a sign-in.
func (r AttendanceRecord) SignedIn() bool {
	return r.Kind == AttendancePresent && r.SignInTime != nil
}

// CivilDate truncates t to its calendar date in loc, returned as midnight UTC
// so dates compare equal regardless of the zone they were computed in.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
