package notifier

import (
	"context"
	"fmt"

	"courtside/internal/events"
	"courtside/pkg/kafka"
	"courtside/pkg/logger"
)

// Worker consumes booking lifecycle events and dispatches user-facing
// notifications. Delivery is a log line for now; the handler is the seam
// where an email or push provider plugs in.
type Worker struct {
	consumer *kafka.Consumer
	log      *logger.Logger
}

func NewWorker(consumer *kafka.Consumer, log *logger.Logger) *Worker {
	return &Worker{
		consumer: consumer,
		log:      log,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	return w.consumer.Start(ctx, w.handle)
}

func (w *Worker) handle(ctx context.Context, msg kafka.Message) error {
	var event events.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	switch msg.GetEventType() {
	case events.TypeBookingCreated:
		w.notify(event, fmt.Sprintf(
			"Your booking is confirmed: %s court %d on %s, %s-%s",
			event.Sport, event.CourtNumber, event.Date, event.StartTime, event.EndTime,
		))
	case events.TypeBookingCancelled:
		w.notify(event, fmt.Sprintf(
			"Your booking for %s court %d on %s at %s has been cancelled",
			event.Sport, event.CourtNumber, event.Date, event.StartTime,
		))
	case events.TypeBookingModified:
		w.notify(event, fmt.Sprintf(
			"Your booking has been moved to %s court %d on %s, %s-%s",
			event.Sport, event.CourtNumber, event.Date, event.StartTime, event.EndTime,
		))
	default:
		w.log.Warn("Unknown booking event type, skipping",
			"event_type", msg.GetEventType(),
			"event_id", msg.GetEventID(),
		)
	}

	return nil
}

func (w *Worker) notify(event events.BookingEvent, message string) {
	w.log.Info("Notification dispatched",
		"user_email", event.UserEmail,
		"booking_id", event.BookingID,
		"academy_id", event.AcademyID,
		"message", message,
	)
}
