package service

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/attendance-service/internal/domain"
	"github.com/spec-kit/attendance-service/internal/events"
	"github.com/spec-kit/attendance-service/internal/repository/memory"
	apperrors "github.com/spec-kit/attendance-service/pkg/util"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type attendanceFixture struct {
	store    *memory.Store
	svc      *AttendanceService
	clock    *testClock
	employee domain.Employee
	events   *eventLog
}

type eventLog struct {
	mu   sync.Mutex
	seen []events.Event
}

func (l *eventLog) handler(_ context.Context, e events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, e)
	return nil
}

func (l *eventLog) types() []events.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]events.EventType, 0, len(l.seen))
	for _, e := range l.seen {
		out = append(out, e.Type)
	}
	return out
}

func newAttendanceFixture(t *testing.T, enforceOrder bool) *attendanceFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	dept := &domain.Department{Name: "Radiology"}
	require.NoError(t, store.Departments().Create(ctx, dept))
	emp := &domain.Employee{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Gender:       domain.GenderFemale,
		DepartmentID: dept.ID,
		Type:         domain.EmployeeTypeMedical,
	}
	require.NoError(t, store.Employees().Create(ctx, emp))

	clock := &testClock{now: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	log := &eventLog{}
	dispatcher := events.NewInMemoryDispatcher(nil)
	dispatcher.Subscribe(events.EventAttendanceRegistered, log.handler)
	dispatcher.Subscribe(events.EventAttendanceSignedOut, log.handler)

	svc := NewAttendanceService(AttendanceDependencies{
		AttendanceRepo:      store.Attendance(),
		EmployeeRepo:        store.Employees(),
		Dispatcher:          dispatcher,
		Clock:               clock.Now,
		EnforceSignOutOrder: enforceOrder,
	})
	return &attendanceFixture{store: store, svc: svc, clock: clock, employee: *emp, events: log}
}

func domainCode(t *testing.T, err error) (string, int) {
	t.Helper()
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	return de.Code, de.HTTPStatus
}

func TestSignIn_ThenDuplicateConflicts(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	rec, err := f.svc.SignIn(ctx, f.employee.ID, "on time")
	require.NoError(t, err)
	assert.Equal(t, domain.AttendancePresent, rec.Kind)
	require.NotNil(t, rec.SignInTime)
	assert.Nil(t, rec.SignOutTime)
	assert.Equal(t, "on time", rec.Notes)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), rec.Date)

	f.clock.Set(f.clock.Now().Add(time.Minute))
	_, err = f.svc.SignIn(ctx, f.employee.ID, "again")
	require.Error(t, err)
	code, status := domainCode(t, err)
	assert.Equal(t, CodeAlreadySignedIn, code)
	assert.Equal(t, http.StatusConflict, status)

	stored, err := f.store.Attendance().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "on time", stored.Notes)
	assert.True(t, stored.SignInTime.Equal(*rec.SignInTime))
	assert.Equal(t, 1, f.store.Count(f.employee.ID, rec.Date))
	assert.Equal(t, []events.EventType{events.EventAttendanceRegistered}, f.events.types())
}

func TestSignIn_UnknownEmployee(t *testing.T) {
	f := newAttendanceFixture(t, false)

	_, err := f.svc.SignIn(context.Background(), 9999, "")
	require.Error(t, err)
	code, status := domainCode(t, err)
	assert.Equal(t, apperrors.CodeNotFound, code)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Empty(t, f.events.types())
}

func TestSignIn_ConcurrentCallsCreateOneRecord(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	var ok, conflicts int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SignIn(ctx, f.employee.ID, "race")
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case apperrors.HasCode(err, CodeAlreadySignedIn):
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(15), conflicts)
	assert.Equal(t, 1, f.store.Count(f.employee.ID, f.svc.Today()))
}

func TestSignIn_ConvertsExcuseRow(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	sick, err := f.svc.RecordSickLeave(ctx, f.employee.ID, nil, "flu")
	require.NoError(t, err)

	rec, err := f.svc.SignIn(ctx, f.employee.ID, "felt better")
	require.NoError(t, err)
	assert.Equal(t, sick.ID, rec.ID)
	assert.Equal(t, domain.AttendancePresent, rec.Kind)
	assert.Equal(t, "felt better", rec.Notes)
	assert.Equal(t, 1, f.store.Count(f.employee.ID, rec.Date))
}

func TestSignOut_Sequencing(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	rec, err := f.svc.SignIn(ctx, f.employee.ID, "")
	require.NoError(t, err)

	f.clock.Set(time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC))
	out, err := f.svc.SignOut(ctx, rec.ID, "left early")
	require.NoError(t, err)
	require.NotNil(t, out.SignOutTime)
	assert.Equal(t, time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC), *out.SignOutTime)
	assert.Equal(t, "left early", out.Notes)

	_, err = f.svc.SignOut(ctx, rec.ID, "twice")
	require.Error(t, err)
	code, status := domainCode(t, err)
	assert.Equal(t, CodeAlreadySignedOut, code)
	assert.Equal(t, http.StatusBadRequest, status)

	assert.Equal(t, []events.EventType{
		events.EventAttendanceRegistered,
		events.EventAttendanceSignedOut,
	}, f.events.types())
}

func TestSignOut_AppendsNotes(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	rec, err := f.svc.SignIn(ctx, f.employee.ID, "on time")
	require.NoError(t, err)
	out, err := f.svc.SignOut(ctx, rec.ID, "left early")
	require.NoError(t, err)
	assert.Equal(t, "on time | left early", out.Notes)
}

func TestSignOut_WithoutSignIn(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	absent, err := f.svc.RecordAbsence(ctx, f.employee.ID, nil, "")
	require.NoError(t, err)

	_, err = f.svc.SignOut(ctx, absent.ID, "")
	require.Error(t, err)
	code, _ := domainCode(t, err)
	assert.Equal(t, CodeNoSignIn, code)
}

func TestSignOut_UnknownRecord(t *testing.T) {
	f := newAttendanceFixture(t, false)

	_, err := f.svc.SignOut(context.Background(), 12345, "")
	require.Error(t, err)
	_, status := domainCode(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

// Record 7 is seeded directly with a 09:00 sign-in. The fixture used ids 1
// and 2, fillers take 3 to 6.
func TestSignOut_SeededRecordSeven(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	for _, name := range []string{"Cardiology", "Oncology", "Pharmacy", "Admin"} {
		require.NoError(t, f.store.Departments().Create(ctx, &domain.Department{Name: name}))
	}
	in := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rec := &domain.AttendanceRecord{
		EmployeeID: f.employee.ID,
		Date:       time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		Kind:       domain.AttendancePresent,
		SignInTime: &in,
	}
	require.NoError(t, f.store.Attendance().Create(ctx, rec))
	require.Equal(t, int64(7), rec.ID)

	f.clock.Set(time.Date(2024, 3, 4, 14, 0, 0, 0, time.UTC))
	out, err := f.svc.SignOut(ctx, 7, "left early")
	require.NoError(t, err)
	require.NotNil(t, out.SignOutTime)
	assert.Equal(t, "left early", out.Notes)

	_, err = f.svc.SignOut(ctx, 7, "left early")
	require.Error(t, err)
	_, status := domainCode(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSignOut_OrderToggle(t *testing.T) {
	f := newAttendanceFixture(t, true)
	ctx := context.Background()

	rec, err := f.svc.SignIn(ctx, f.employee.ID, "")
	require.NoError(t, err)

	f.clock.Set(f.clock.Now().Add(-time.Hour))
	_, err = f.svc.SignOut(ctx, rec.ID, "")
	require.Error(t, err)
	code, _ := domainCode(t, err)
	assert.Equal(t, CodeSignOutBeforeSignIn, code)

	lenient := newAttendanceFixture(t, false)
	rec, err = lenient.svc.SignIn(ctx, lenient.employee.ID, "")
	require.NoError(t, err)
	lenient.clock.Set(lenient.clock.Now().Add(-time.Hour))
	_, err = lenient.svc.SignOut(ctx, rec.ID, "")
	assert.NoError(t, err)
}

func TestExcuse_OverwritesPreviousKind(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()
	day := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)

	sick, err := f.svc.RecordSickLeave(ctx, f.employee.ID, &day, "flu")
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceSickLeave, sick.Kind)

	absent, err := f.svc.RecordAbsence(ctx, f.employee.ID, &day, "no show")
	require.NoError(t, err)
	assert.Equal(t, sick.ID, absent.ID)
	assert.Equal(t, domain.AttendanceAbsent, absent.Kind)
	assert.Equal(t, "no show", absent.Notes)
	assert.Nil(t, absent.SignInTime)
	assert.Nil(t, absent.SignOutTime)
	assert.Equal(t, 1, f.store.Count(f.employee.ID, day))
}

func TestExcuse_ClearsSignInTimes(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	rec, err := f.svc.SignIn(ctx, f.employee.ID, "")
	require.NoError(t, err)

	sick, err := f.svc.RecordSickLeave(ctx, f.employee.ID, nil, "went home")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, sick.ID)
	assert.Nil(t, sick.SignInTime)
	assert.Nil(t, sick.SignOutTime)
}

func TestGetRange(t *testing.T) {
	f := newAttendanceFixture(t, false)
	ctx := context.Background()

	d := func(day int) *time.Time {
		v := time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
		return &v
	}
	for _, day := range []int{5, 1, 3} {
		_, err := f.svc.RecordAbsence(ctx, f.employee.ID, d(day), "")
		require.NoError(t, err)
	}

	all, err := f.svc.GetRange(ctx, f.employee.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, *d(1), all[0].Date)
	assert.Equal(t, *d(3), all[1].Date)
	assert.Equal(t, *d(5), all[2].Date)

	window, err := f.svc.GetRange(ctx, f.employee.ID, d(2), d(5))
	require.NoError(t, err)
	assert.Len(t, window, 2)

	_, err = f.svc.GetRange(ctx, f.employee.ID, d(5), d(1))
	require.Error(t, err)
	code, status := domainCode(t, err)
	assert.Equal(t, CodeRangeInverted, code)
	assert.Equal(t, http.StatusBadRequest, status)

	// inverted range is rejected even without data
	other := newAttendanceFixture(t, false)
	_, err = other.svc.GetRange(ctx, other.employee.ID, d(9), d(8))
	assert.True(t, apperrors.HasCode(err, CodeRangeInverted))

	_, err = f.svc.GetRange(ctx, 4242, nil, nil)
	_, status = domainCode(t, err)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestToday_UsesConfiguredZone(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	svc := NewAttendanceService(AttendanceDependencies{
		Clock:    func() time.Time { return time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC) },
		Location: loc,
	})
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), svc.Today())
}

func TestSignIn_FailingSubscribersDoNotAffectResult(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	dept := &domain.Department{Name: "Pharmacy"}
	require.NoError(t, store.Departments().Create(ctx, dept))
	emp := &domain.Employee{FirstName: "Grace", LastName: "Hopper", DepartmentID: dept.ID}
	require.NoError(t, store.Employees().Create(ctx, emp))

	var delivered atomic.Int32
	dispatcher := events.NewInMemoryDispatcher(nil)
	dispatcher.Subscribe(events.EventAttendanceRegistered, func(context.Context, events.Event) error {
		return assert.AnError
	})
	dispatcher.Subscribe(events.EventAttendanceRegistered, func(context.Context, events.Event) error {
		panic("payroll unavailable")
	})
	dispatcher.Subscribe(events.EventAttendanceRegistered, func(context.Context, events.Event) error {
		delivered.Add(1)
		return nil
	})

	svc := NewAttendanceService(AttendanceDependencies{
		AttendanceRepo: store.Attendance(),
		EmployeeRepo:   store.Employees(),
		Dispatcher:     dispatcher,
		Clock:          func() time.Time { return time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) },
	})

	rec, err := svc.SignIn(ctx, emp.ID, "")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.AttendancePresent, rec.Kind)
	assert.Equal(t, int32(1), delivered.Load())

	stored, err := store.Attendance().GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.SignInTime)
}
