package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/attendance-service/internal/domain"
	"github.com/spec-kit/attendance-service/internal/events"
)

// PayrollNotifier informs payroll about committed attendance changes. It only
// logs; payroll calculation lives elsewhere.
type PayrollNotifier struct {
	logger *zap.Logger
}

// NewPayrollNotifier creates the notifier.
func NewPayrollNotifier(logger *zap.Logger) *PayrollNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayrollNotifier{logger: logger}
}

// RegisterHandlers subscribes to attendance events.
func (n *PayrollNotifier) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventAttendanceRegistered, n.handleAttendanceRegistered)
	dispatcher.Subscribe(events.EventAttendanceSignedOut, n.handleAttendanceSignedOut)
}

func (n *PayrollNotifier) handleAttendanceRegistered(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AttendancePayload)
	if !ok {
		n.logger.Warn("unexpected attendance payload", zap.String("event_id", event.ID))
		return nil
	}
	n.logger.Info("Payroll update: attendance registered",
		zap.String("employee", payload.Employee.FullName()),
		zap.Int64("employee_id", payload.Employee.ID),
		zap.String("kind", string(payload.Record.Kind)),
		zap.String("date", payload.Record.Date.Format(domain.DateLayout)))
	return nil
}

func (n *PayrollNotifier) handleAttendanceSignedOut(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AttendancePayload)
	if !ok {
		n.logger.Warn("unexpected attendance payload", zap.String("event_id", event.ID))
		return nil
	}
	fields := []zap.Field{
		zap.String("employee", payload.Employee.FullName()),
		zap.Int64("employee_id", payload.Employee.ID),
		zap.Int64("record_id", payload.Record.ID),
	}
	if in, out := payload.Record.SignInTime, payload.Record.SignOutTime; in != nil && out != nil {
		fields = append(fields, zap.Duration("worked", out.Sub(*in)))
	}
	n.logger.Info("Payroll update: attendance signed out", fields...)
	return nil
}
