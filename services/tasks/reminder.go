package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"courtside/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeSendReminder = "reminder:send"

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("reminder:" + payload.BookingID),
		asynq.MaxRetry(3),
	}

	return task, opts, nil
}

// ReminderScheduler enqueues reminder pushes for committed bookings.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, booking models.Booking) error
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type AsynqReminderScheduler struct {
	Client   Enqueuer
	Lead     time.Duration
	Location *time.Location
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewAsynqReminderScheduler(client Enqueuer, lead time.Duration, loc *time.Location, logger *zap.Logger) *AsynqReminderScheduler {
	return &AsynqReminderScheduler{Client: client, Lead: lead, Location: loc, Logger: logger, Now: time.Now}
}

// ReminderFor builds the payload and fire time for a booking.
func ReminderFor(b models.Booking, lead time.Duration, loc *time.Location) (models.ReminderPayload, time.Time) {
	fireAt := b.StartTime.Add(-lead)
	return models.ReminderPayload{
		BookingID:  b.ID,
		UserID:     b.UserID,
		LocationID: b.LocationID,
		Title:      "Upcoming session",
		Body:       fmt.Sprintf("%s starts %s", b.ServiceName, b.StartTime.In(loc).Format("Mon Jan 2, 3:04 PM")),
		FireDate:   fireAt.UTC().Format(time.RFC3339),
	}, fireAt
}

func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, b models.Booking) error {
	payload, fireAt := ReminderFor(b, s.Lead, s.Location)
	if !fireAt.After(s.Now()) {
		s.Logger.Debug("Reminder time already passed, skipping", zap.String("bookingID", b.ID))
		return nil
	}

	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	info, err := s.Client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue reminder for booking %s: %w", b.ID, err)
	}
	s.Logger.Info("Reminder scheduled",
		zap.String("bookingID", b.ID),
		zap.String("taskID", info.ID),
		zap.Time("fireAt", fireAt))
	return nil
}
