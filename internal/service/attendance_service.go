package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/attendance-service/internal/auth"
	"github.com/spec-kit/attendance-service/internal/domain"
	"github.com/spec-kit/attendance-service/internal/events"
	"github.com/spec-kit/attendance-service/internal/locker"
	"github.com/spec-kit/attendance-service/internal/repository"
	apperrors "github.com/spec-kit/attendance-service/pkg/util"
)

// Attendance error codes.
const (
	CodeAlreadySignedIn      = "ALREADY_SIGNED_IN"
	CodeNoSignIn             = "NO_SIGN_IN"
	CodeAlreadySignedOut     = "ALREADY_SIGNED_OUT"
	CodeSignOutBeforeSignIn  = "SIGN_OUT_BEFORE_SIGN_IN"
	CodeRangeInverted        = "RANGE_INVERTED"
	attendanceNotesSeparator = " | "
)

// AttendanceService owns the per-employee, per-day attendance state machine.
type AttendanceService struct {
	records             repository.AttendanceRepository
	employees           repository.EmployeeRepository
	locker              locker.Locker
	dispatcher          events.Dispatcher
	logger              *zap.Logger
	now                 func() time.Time
	loc                 *time.Location
	enforceSignOutOrder bool
}

// AttendanceDependencies bundles collaborators for the attendance service.
type AttendanceDependencies struct {
	AttendanceRepo repository.AttendanceRepository
	EmployeeRepo   repository.EmployeeRepository
	Locker         locker.Locker
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Location decides the calendar day of "today". Defaults to UTC.
	Location            *time.Location
	EnforceSignOutOrder bool
}

// NewAttendanceService constructs the service.
func NewAttendanceService(deps AttendanceDependencies) *AttendanceService {
	s := &AttendanceService{
		records:             deps.AttendanceRepo,
		employees:           deps.EmployeeRepo,
		locker:              deps.Locker,
		dispatcher:          deps.Dispatcher,
		logger:              deps.Logger,
		now:                 deps.Clock,
		loc:                 deps.Location,
		enforceSignOutOrder: deps.EnforceSignOutOrder,
	}
	if s.locker == nil {
		s.locker = locker.NewLocalLocker()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	return s
}

// Today returns the current calendar date in the configured zone.
func (s *AttendanceService) Today() time.Time {
	return domain.CivilDate(s.now(), s.loc)
}

// SignIn records today's sign-in for the employee. An existing excuse row for
// today is converted to a present day.
func (s *AttendanceService) SignIn(ctx context.Context, employeeID int64, notes string) (*domain.AttendanceRecord, error) {
	emp, err := s.employee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	date := domain.CivilDate(now, s.loc)

	unlock, err := s.locker.Lock(ctx, lockKey(employeeID, date))
	if err != nil {
		return nil, fmt.Errorf("lock attendance: %w", err)
	}
	defer unlock()

	existing, err := s.records.GetByEmployeeAndDate(ctx, employeeID, date)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		existing = nil
	case err != nil:
		return nil, err
	}

	if existing != nil && existing.SignedIn() {
		return nil, alreadySignedIn(employeeID, date)
	}

	signIn := now
	var rec *domain.AttendanceRecord
	if existing != nil {
		rec = existing
		rec.Kind = domain.AttendancePresent
		rec.SignInTime = &signIn
		rec.SignOutTime = nil
		rec.Notes = notes
		if err := s.records.Update(ctx, rec); err != nil {
			return nil, err
		}
	} else {
		rec = &domain.AttendanceRecord{
			EmployeeID: employeeID,
			Date:       date,
			Kind:       domain.AttendancePresent,
			SignInTime: &signIn,
			Notes:      notes,
		}
		if err := s.records.Create(ctx, rec); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, alreadySignedIn(employeeID, date)
			}
			return nil, err
		}
	}

	s.publishEvent(ctx, events.EventAttendanceRegistered, *emp, *rec)
	return rec, nil
}

// SignOut closes an open sign-in.
func (s *AttendanceService) SignOut(ctx context.Context, recordID int64, notes string) (*domain.AttendanceRecord, error) {
	current, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, recordNotFound(recordID, err)
	}

	unlock, err := s.locker.Lock(ctx, lockKey(current.EmployeeID, current.Date))
	if err != nil {
		return nil, fmt.Errorf("lock attendance: %w", err)
	}
	defer unlock()

	// re-read under the lock
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, recordNotFound(recordID, err)
	}

	details := map[string]any{"recordId": recordID}
	if rec.SignInTime == nil {
		return nil, apperrors.NewBadRequest(CodeNoSignIn, "no sign-in recorded for this attendance", details)
	}
	if rec.SignOutTime != nil {
		return nil, apperrors.NewBadRequest(CodeAlreadySignedOut, "already signed out", details)
	}

	now := s.now()
	if s.enforceSignOutOrder && now.Before(*rec.SignInTime) {
		return nil, apperrors.NewBadRequest(CodeSignOutBeforeSignIn, "sign-out precedes sign-in", details)
	}

	rec.SignOutTime = &now
	rec.Notes = appendNotes(rec.Notes, notes)
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}

	if emp, err := s.employees.GetByID(ctx, rec.EmployeeID); err == nil {
		s.publishEvent(ctx, events.EventAttendanceSignedOut, *emp, *rec)
	} else {
		s.logger.Warn("load employee for sign-out event", zap.Int64("employee_id", rec.EmployeeID), zap.Error(err))
	}
	return rec, nil
}

// RecordSickLeave marks the day as sick leave. A nil date means today.
func (s *AttendanceService) RecordSickLeave(ctx context.Context, employeeID int64, date *time.Time, notes string) (*domain.AttendanceRecord, error) {
	return s.recordExcuse(ctx, employeeID, domain.AttendanceSickLeave, date, notes)
}

// RecordAbsence marks the day as absent. A nil date means today.
func (s *AttendanceService) RecordAbsence(ctx context.Context, employeeID int64, date *time.Time, notes string) (*domain.AttendanceRecord, error) {
	return s.recordExcuse(ctx, employeeID, domain.AttendanceAbsent, date, notes)
}

func (s *AttendanceService) recordExcuse(ctx context.Context, employeeID int64, kind domain.AttendanceKind, date *time.Time, notes string) (*domain.AttendanceRecord, error) {
	emp, err := s.employee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	day := s.Today()
	if date != nil {
		day = domain.CivilDate(*date, nil)
	}

	unlock, err := s.locker.Lock(ctx, lockKey(employeeID, day))
	if err != nil {
		return nil, fmt.Errorf("lock attendance: %w", err)
	}
	defer unlock()

	rec, err := s.upsertExcuse(ctx, employeeID, kind, day, notes)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventAttendanceRegistered, *emp, *rec)
	return rec, nil
}

// upsertExcuse overwrites the day's record or creates one. A duplicate on
// create means another process won the insert; the row is re-read and
// overwritten.
func (s *AttendanceService) upsertExcuse(ctx context.Context, employeeID int64, kind domain.AttendanceKind, day time.Time, notes string) (*domain.AttendanceRecord, error) {
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.records.GetByEmployeeAndDate(ctx, employeeID, day)
		switch {
		case err == nil:
			existing.Kind = kind
			existing.SignInTime = nil
			existing.SignOutTime = nil
			existing.Notes = notes
			if err := s.records.Update(ctx, existing); err != nil {
				return nil, err
			}
			return existing, nil
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, err
		}

		rec := &domain.AttendanceRecord{
			EmployeeID: employeeID,
			Date:       day,
			Kind:       kind,
			Notes:      notes,
		}
		err = s.records.Create(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		s.logger.Info("attendance insert raced; overwriting",
			zap.Int64("employee_id", employeeID),
			zap.String("date", day.Format(domain.DateLayout)))
	}
	return nil, apperrors.NewConflict("", "attendance record changed concurrently", map[string]any{"employeeId": employeeID})
}

// GetRange lists records for the employee between start and end inclusive.
// Nil bounds are open.
func (s *AttendanceService) GetRange(ctx context.Context, employeeID int64, start, end *time.Time) ([]domain.AttendanceRecord, error) {
	if _, err := s.employee(ctx, employeeID); err != nil {
		return nil, err
	}

	var from, to *time.Time
	if start != nil {
		d := domain.CivilDate(*start, nil)
		from = &d
	}
	if end != nil {
		d := domain.CivilDate(*end, nil)
		to = &d
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, apperrors.NewBadRequest(CodeRangeInverted, "startDate must not be after endDate", map[string]any{
			"startDate": from.Format(domain.DateLayout),
			"endDate":   to.Format(domain.DateLayout),
		})
	}
	return s.records.ListByEmployee(ctx, employeeID, from, to)
}

func (s *AttendanceService) employee(ctx context.Context, id int64) (*domain.Employee, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("employee", map[string]any{"employeeId": id})
		}
		return nil, err
	}
	return emp, nil
}

func (s *AttendanceService) publishEvent(ctx context.Context, eventType events.EventType, emp domain.Employee, rec domain.AttendanceRecord) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: s.now(),
		Payload:   events.AttendancePayload{Employee: emp, Record: rec},
	}
	if p, ok := auth.PrincipalFrom(ctx); ok {
		event.Actor = events.Actor{Subject: p.Subject}
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish attendance event",
			zap.String("event_type", string(eventType)),
			zap.Int64("record_id", rec.ID),
			zap.Error(err))
	}
}

func lockKey(employeeID int64, date time.Time) string {
	return fmt.Sprintf("attendance:%d:%s", employeeID, date.Format(domain.DateLayout))
}

func appendNotes(existing, extra string) string {
	switch {
	case strings.TrimSpace(extra) == "":
		return existing
	case strings.TrimSpace(existing) == "":
		return extra
	default:
		return existing + attendanceNotesSeparator + extra
	}
}

func alreadySignedIn(employeeID int64, date time.Time) error {
	return apperrors.NewConflict(CodeAlreadySignedIn, "employee already signed in today", map[string]any{
		"employeeId": employeeID,
		"date":       date.Format(domain.DateLayout),
	})
}

func recordNotFound(id int64, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("attendance record", map[string]any{"recordId": id})
	}
	return err
}
