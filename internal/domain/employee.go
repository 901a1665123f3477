package domain

import (
	"strings"
	"time"
)

// Gender enumerates accepted employee genders.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// EmployeeType enumerates employment categories.
type EmployeeType string

const (
	EmployeeTypeMedical    EmployeeType = "MEDICAL"
	EmployeeTypeNonMedical EmployeeType = "NON_MEDICAL"
)

// ParseGender matches case-insensitively.
func ParseGender(raw string) (Gender, bool) {
	switch g := Gender(strings.ToUpper(strings.TrimSpace(raw))); g {
	case GenderMale, GenderFemale:
		return g, true
	}
	return "", false
}

// ParseEmployeeType matches case-insensitively.
func ParseEmployeeType(raw string) (EmployeeType, bool) {
	switch t := EmployeeType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case EmployeeTypeMedical, EmployeeTypeNonMedical:
		return t, true
	}
	return "", false
}

// Employee is the person whose attendance is tracked.
type Employee struct {
	ID           int64
	FirstName    string
	LastName     string
	Gender       Gender
	DepartmentID int64
	Address      string
	Type         EmployeeType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
