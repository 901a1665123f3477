package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/attendance-service/internal/domain"
	"github.com/spec-kit/attendance-service/internal/repository"
)

func seedEmployee(t *testing.T, s *Store) (domain.Department, domain.Employee) {
	t.Helper()
	ctx := context.Background()
	dept := domain.Department{Name: "Nursing"}
	require.NoError(t, s.Departments().Create(ctx, &dept))
	emp := domain.Employee{FirstName: "Florence", LastName: "Nightingale", DepartmentID: dept.ID}
	require.NoError(t, s.Employees().Create(ctx, &emp))
	return dept, emp
}

func TestStore_AttendanceUniquePerDay(t *testing.T) {
	s := NewStore()
	_, emp := seedEmployee(t, s)
	ctx := context.Background()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Attendance().Create(ctx, &domain.AttendanceRecord{EmployeeID: emp.ID, Date: day, Kind: domain.AttendanceAbsent}))
	err := s.Attendance().Create(ctx, &domain.AttendanceRecord{EmployeeID: emp.ID, Date: day, Kind: domain.AttendancePresent})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = s.Attendance().Create(ctx, &domain.AttendanceRecord{EmployeeID: 999, Date: day})
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestStore_RecordsAreCopied(t *testing.T) {
	s := NewStore()
	_, emp := seedEmployee(t, s)
	ctx := context.Background()

	in := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rec := &domain.AttendanceRecord{EmployeeID: emp.ID, Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), SignInTime: &in}
	require.NoError(t, s.Attendance().Create(ctx, rec))

	in = in.Add(time.Hour)
	got, err := s.Attendance().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.SignInTime.Hour())
}

func TestStore_ListByEmployeeRangeAndOrder(t *testing.T) {
	s := NewStore()
	_, emp := seedEmployee(t, s)
	ctx := context.Background()

	for _, day := range []int{9, 2, 5} {
		require.NoError(t, s.Attendance().Create(ctx, &domain.AttendanceRecord{
			EmployeeID: emp.ID,
			Date:       time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC),
			Kind:       domain.AttendanceAbsent,
		}))
	}

	start := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	recs, err := s.Attendance().ListByEmployee(ctx, emp.ID, &start, &end)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, recs[0].Date.Day())
	assert.Equal(t, 5, recs[1].Date.Day())
}

func TestStore_DepartmentDeleteCascades(t *testing.T) {
	s := NewStore()
	dept, emp := seedEmployee(t, s)
	ctx := context.Background()
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Attendance().Create(ctx, &domain.AttendanceRecord{EmployeeID: emp.ID, Date: day}))

	require.NoError(t, s.Departments().Delete(ctx, dept.ID))

	_, err := s.Employees().GetByID(ctx, emp.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Equal(t, 0, s.Count(emp.ID, day))
}

func TestStore_UniqueUsernames(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &domain.User{Username: "alice"}))
	assert.ErrorIs(t, s.Users().Create(ctx, &domain.User{Username: "alice"}), repository.ErrDuplicate)

	_, err := s.Users().GetByUsername(ctx, "bob")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}
