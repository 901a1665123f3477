package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/attendance-service/internal/domain"
)

// AttendanceRepository persists attendance records. The (employee_id,
// attendance_date) pair is unique; Create reports ErrDuplicate when violated.
type AttendanceRepository interface {
	Create(ctx context.Context, rec *domain.AttendanceRecord) error
	Update(ctx context.Context, rec *domain.AttendanceRecord) error
	GetByID(ctx context.Context, id int64) (*domain.AttendanceRecord, error)
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*domain.AttendanceRecord, error)
	// ListByEmployee returns records ordered by date ascending. Nil bounds are open.
	ListByEmployee(ctx context.Context, employeeID int64, start, end *time.Time) ([]domain.AttendanceRecord, error)
}

type attendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository instantiates repository.
func NewAttendanceRepository(pool *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepository{pool: pool}
}

const attendanceColumns = `id, employee_id, attendance_date, kind, sign_in_time, sign_out_time,
               COALESCE(notes, ''), created_at, updated_at`

func (r *attendanceRepository) Create(ctx context.Context, rec *domain.AttendanceRecord) error {
	const query = `
        INSERT INTO attendance_records (employee_id, attendance_date, kind, sign_in_time, sign_out_time, notes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		rec.EmployeeID,
		rec.Date,
		rec.Kind,
		rec.SignInTime,
		rec.SignOutTime,
		rec.Notes,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	return translate(err)
}

func (r *attendanceRepository) Update(ctx context.Context, rec *domain.AttendanceRecord) error {
	const query = `
        UPDATE attendance_records SET kind=$1, sign_in_time=$2, sign_out_time=$3, notes=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		rec.Kind,
		rec.SignInTime,
		rec.SignOutTime,
		rec.Notes,
		rec.ID,
	).Scan(&rec.UpdatedAt)
	return translate(err)
}

func (r *attendanceRepository) GetByID(ctx context.Context, id int64) (*domain.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*domain.AttendanceRecord, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE employee_id=$1 AND attendance_date=$2`
	return r.fetchSingle(ctx, query, employeeID, date)
}

func (r *attendanceRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.AttendanceRecord, error) {
	var rec domain.AttendanceRecord
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&rec.ID,
		&rec.EmployeeID,
		&rec.Date,
		&rec.Kind,
		&rec.SignInTime,
		&rec.SignOutTime,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID int64, start, end *time.Time) ([]domain.AttendanceRecord, error) {
	clauses := []string{"employee_id=$1"}
	args := []any{employeeID}

	if start != nil {
		args = append(args, *start)
		clauses = append(clauses, fmt.Sprintf("attendance_date >= $%d", len(args)))
	}
	if end != nil {
		args = append(args, *end)
		clauses = append(clauses, fmt.Sprintf("attendance_date <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM attendance_records WHERE %s ORDER BY attendance_date ASC`,
		attendanceColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttendance(rows)
}

func scanAttendance(rows pgx.Rows) ([]domain.AttendanceRecord, error) {
	result := []domain.AttendanceRecord{}
	for rows.Next() {
		var rec domain.AttendanceRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.EmployeeID,
			&rec.Date,
			&rec.Kind,
			&rec.SignInTime,
			&rec.SignOutTime,
			&rec.Notes,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
