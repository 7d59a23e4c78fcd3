package notify

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// Dispatcher queues booking event messages and delivers them to the ops chat
// off the request path. A full queue drops the message rather than block a
// request.
type Dispatcher struct {
	sender Sender
	chatID int64
	retry  RetryPolicy
	queue  chan string
	logger zerolog.Logger
}

func NewDispatcher(sender Sender, chatID int64, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		chatID: chatID,
		retry: RetryPolicy{
			MaxRetries:    5,
			InitialDelay:  2 * time.Second,
			MaxDelay:      time.Minute,
			BackoffFactor: 2,
		},
		queue:  make(chan string, 128),
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// Run consumes the queue until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info().Msg("notify dispatcher started")
	defer d.logger.Info().Msg("notify dispatcher stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case text := <-d.queue:
			d.deliver(ctx, text)
		}
	}
}

func (d *Dispatcher) BookingCreated(b *models.BookingDetail) {
	d.enqueue(fmt.Sprintf(
		"New booking #%d: %q requested by %s, %s to %s",
		b.ID, b.Item.Name, b.Booker.Name,
		b.Start.Format("2006-01-02 15:04"), b.End.Format("2006-01-02 15:04"),
	))
}

func (d *Dispatcher) BookingDecided(b *models.BookingDetail) {
	d.enqueue(fmt.Sprintf("Booking #%d for %q is now %s", b.ID, b.Item.Name, b.Status))
}

func (d *Dispatcher) enqueue(text string) {
	select {
	case d.queue <- text:
	default:
		d.logger.Warn().Msg("notify queue full, message dropped")
	}
}

func (d *Dispatcher) deliver(ctx context.Context, text string) {
	for attempt := 1; ; attempt++ {
		err := d.sender.SendMessage(d.chatID, text)
		if err == nil {
			return
		}
		if attempt >= d.retry.MaxRetries {
			d.logger.Error().Err(err).Int("attempts", attempt).Msg("notification dropped")
			return
		}

		delay := d.retry.NextDelay(attempt)
		d.logger.Warn().Err(err).Dur("retry_in", delay).Msg("notification send failed")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}
