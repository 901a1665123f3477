package persistence

import (
	"github.com/spec-kit/attendance-service/internal/repository"
	"github.com/spec-kit/attendance-service/internal/repository/memory"
)

// Repositories bundles the stores used by the services.
type Repositories struct {
	Users       repository.UserRepository
	Departments repository.DepartmentRepository
	Employees   repository.EmployeeRepository
	Attendance  repository.AttendanceRepository
}

// NewRepositories returns Postgres repositories when a pool is open and the
// in-memory store otherwise.
func NewRepositories(pg *Postgres) Repositories {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return Repositories{
			Users:       repository.NewUserRepository(pool),
			Departments: repository.NewDepartmentRepository(pool),
			Employees:   repository.NewEmployeeRepository(pool),
			Attendance:  repository.NewAttendanceRepository(pool),
		}
	}
	store := memory.NewStore()
	return Repositories{
		Users:       store.Users(),
		Departments: store.Departments(),
		Employees:   store.Employees(),
		Attendance:  store.Attendance(),
	}
}
