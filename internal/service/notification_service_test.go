package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/attendance-service/internal/domain"
	"github.com/spec-kit/attendance-service/internal/events"
)

func TestPayrollNotifier_LogsAttendanceEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher(nil)
	NewPayrollNotifier(zap.New(core)).RegisterHandlers(dispatcher)

	in := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	out := in.Add(8 * time.Hour)
	payload := events.AttendancePayload{
		Employee: domain.Employee{ID: 42, FirstName: "Ada", LastName: "Lovelace"},
		Record: domain.AttendanceRecord{
			ID:          1,
			EmployeeID:  42,
			Date:        time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			Kind:        domain.AttendancePresent,
			SignInTime:  &in,
			SignOutTime: &out,
		},
	}

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventAttendanceRegistered, Payload: payload}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventAttendanceSignedOut, Payload: payload}))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Payroll update: attendance registered", entries[0].Message)
	assert.Equal(t, "Ada Lovelace", entries[0].ContextMap()["employee"])
	assert.Equal(t, "2024-03-04", entries[0].ContextMap()["date"])
	assert.Equal(t, "Payroll update: attendance signed out", entries[1].Message)
	assert.Equal(t, 8*time.Hour, entries[1].ContextMap()["worked"])
}
