// Package memory provides in-process implementations of the repository
// interfaces. They back the service when no Postgres DSN is configured and
// are used by tests. Semantics follow the SQL schema: missing rows report
// pgx.ErrNoRows and unique keys report repository.ErrDuplicate.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/attendance-service/internal/domain"
	"github.com/spec-kit/attendance-service/internal/repository"
)

// Store holds every table behind a single lock.
type Store struct {
	mu          sync.RWMutex
	seq         int64
	now         func() time.Time
	users       map[int64]domain.User
	departments map[int64]domain.Department
	employees   map[int64]domain.Employee
	attendance  map[int64]domain.AttendanceRecord
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:         time.Now,
		users:       make(map[int64]domain.User),
		departments: make(map[int64]domain.Department),
		employees:   make(map[int64]domain.Employee),
		attendance:  make(map[int64]domain.AttendanceRecord),
	}
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Departments returns the department repository view.
func (s *Store) Departments() repository.DepartmentRepository { return departmentRepo{s} }

// Employees returns the employee repository view.
func (s *Store) Employees() repository.EmployeeRepository { return employeeRepo{s} }

// Attendance returns the attendance repository view.
func (s *Store) Attendance() repository.AttendanceRepository { return attendanceRepo{s} }

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	now := r.s.now()
	user.ID = r.s.nextID()
	user.CreatedAt, user.UpdatedAt = now, now
	stored := *user
	stored.Roles = append([]string{}, user.Roles...)
	r.s.users[user.ID] = stored
	return nil
}

func (r userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	user.UpdatedAt = r.s.now()
	stored := *user
	stored.Roles = append([]string{}, user.Roles...)
	r.s.users[user.ID] = stored
	return nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Username == username {
			out := u
			out.Roles = append([]string{}, u.Roles...)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type departmentRepo struct{ s *Store }

func (r departmentRepo) Create(_ context.Context, dept *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.departments {
		if d.Name == dept.Name {
			return repository.ErrDuplicate
		}
	}
	now := r.s.now()
	dept.ID = r.s.nextID()
	dept.CreatedAt, dept.UpdatedAt = now, now
	r.s.departments[dept.ID] = *dept
	return nil
}

func (r departmentRepo) Update(_ context.Context, dept *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.departments[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	for id, d := range r.s.departments {
		if id != dept.ID && d.Name == dept.Name {
			return repository.ErrDuplicate
		}
	}
	dept.UpdatedAt = r.s.now()
	r.s.departments[dept.ID] = *dept
	return nil
}

// Delete cascades to employees and their attendance, like the SQL schema.
func (r departmentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.departments[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.departments, id)
	for empID, emp := range r.s.employees {
		if emp.DepartmentID == id {
			r.s.deleteEmployeeLocked(empID)
		}
	}
	return nil
}

func (r departmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &d, nil
}

func (r departmentRepo) List(_ context.Context) ([]domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Department, 0, len(r.s.departments))
	for _, d := range r.s.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type employeeRepo struct{ s *Store }

func (r employeeRepo) Create(_ context.Context, emp *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	emp.ID = r.s.nextID()
	emp.CreatedAt, emp.UpdatedAt = now, now
	r.s.employees[emp.ID] = *emp
	return nil
}

func (r employeeRepo) Update(_ context.Context, emp *domain.Employee) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[emp.ID]; !ok {
		return pgx.ErrNoRows
	}
	emp.UpdatedAt = r.s.now()
	r.s.employees[emp.ID] = *emp
	return nil
}

func (r employeeRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[id]; !ok {
		return pgx.ErrNoRows
	}
	r.s.deleteEmployeeLocked(id)
	return nil
}

func (s *Store) deleteEmployeeLocked(id int64) {
	delete(s.employees, id)
	for recID, rec := range s.attendance {
		if rec.EmployeeID == id {
			delete(s.attendance, recID)
		}
	}
}

func (r employeeRepo) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &e, nil
}

func (r employeeRepo) List(_ context.Context) ([]domain.Employee, error) {
	return r.filter(func(domain.Employee) bool { return true }), nil
}

func (r employeeRepo) ListByDepartment(_ context.Context, departmentID int64) ([]domain.Employee, error) {
	return r.filter(func(e domain.Employee) bool { return e.DepartmentID == departmentID }), nil
}

func (r employeeRepo) filter(keep func(domain.Employee) bool) []domain.Employee {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Employee{}
	for _, e := range r.s.employees {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type attendanceRepo struct{ s *Store }

func (r attendanceRepo) Create(_ context.Context, rec *domain.AttendanceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.employees[rec.EmployeeID]; !ok {
		return pgx.ErrNoRows
	}
	for _, existing := range r.s.attendance {
		if existing.EmployeeID == rec.EmployeeID && existing.Date.Equal(rec.Date) {
			return repository.ErrDuplicate
		}
	}
	now := r.s.now()
	rec.ID = r.s.nextID()
	rec.CreatedAt, rec.UpdatedAt = now, now
	r.s.attendance[rec.ID] = cloneRecord(*rec)
	return nil
}

func (r attendanceRepo) Update(_ context.Context, rec *domain.AttendanceRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.attendance[rec.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	// employee and date are immutable, as in the SQL update.
	existing.Kind = rec.Kind
	existing.SignInTime = rec.SignInTime
	existing.SignOutTime = rec.SignOutTime
	existing.Notes = rec.Notes
	existing.UpdatedAt = r.s.now()
	rec.UpdatedAt = existing.UpdatedAt
	r.s.attendance[rec.ID] = cloneRecord(existing)
	return nil
}

func (r attendanceRepo) GetByID(_ context.Context, id int64) (*domain.AttendanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.attendance[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneRecord(rec)
	return &out, nil
}

func (r attendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID int64, date time.Time) (*domain.AttendanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rec := range r.s.attendance {
		if rec.EmployeeID == employeeID && rec.Date.Equal(date) {
			out := cloneRecord(rec)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r attendanceRepo) ListByEmployee(_ context.Context, employeeID int64, start, end *time.Time) ([]domain.AttendanceRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.AttendanceRecord{}
	for _, rec := range r.s.attendance {
		if rec.EmployeeID != employeeID {
			continue
		}
		if start != nil && rec.Date.Before(*start) {
			continue
		}
		if end != nil && rec.Date.After(*end) {
			continue
		}
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Count returns the number of attendance rows for an (employee, date) pair.
func (s *Store) Count(employeeID int64, date time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.attendance {
		if rec.EmployeeID == employeeID && rec.Date.Equal(date) {
			n++
		}
	}
	return n
}

func cloneRecord(rec domain.AttendanceRecord) domain.AttendanceRecord {
	if rec.SignInTime != nil {
		t := *rec.SignInTime
		rec.SignInTime = &t
	}
	if rec.SignOutTime != nil {
		t := *rec.SignOutTime
		rec.SignOutTime = &t
	}
	return rec
}
