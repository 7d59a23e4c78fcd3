package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingNotifier receives booking lifecycle events. Implementations must
// not block; the service fires and forgets.
type BookingNotifier interface {
	BookingCreated(booking *models.BookingDetail)
	BookingDecided(booking *models.BookingDetail)
}

// BookingRequest is the inbound shape for creating a booking.
type BookingRequest struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	ItemID int64     `json:"itemId"`
}

// Bookings drives the booking lifecycle: WAITING at creation, then a single
// owner decision to APPROVED or REJECTED.
type Bookings struct {
	db       *database.DB
	notifier BookingNotifier
	logger   zerolog.Logger
}

func NewBookings(db *database.DB, notifier BookingNotifier, logger *zerolog.Logger) *Bookings {
	return &Bookings{
		db:       db,
		notifier: notifier,
		logger:   logger.With().Str("component", "bookings").Logger(),
	}
}

// Add creates a booking in WAITING status. The status a caller might supply
// is ignored. Overlapping bookings of the same item are not rejected here.
func (s *Bookings) Add(ctx context.Context, requesterID int64, req BookingRequest) (*models.BookingDetail, error) {
	item, err := fetchItem(ctx, s.db, req.ItemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, Validationf("Error: item %d is not available.", item.ID)
	}
	if _, err := fetchUser(ctx, s.db, requesterID); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Start:    req.Start,
		End:      req.End,
		ItemID:   item.ID,
		BookerID: requesterID,
		Status:   models.StatusWaiting,
	}
	if err := s.db.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	detail, err := s.db.GetBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", detail.ID).
		Int64("item_id", detail.ItemID).
		Int64("booker_id", detail.BookerID).
		Time("start", detail.Start).
		Time("end", detail.End).
		Msg("booking added")
	if s.notifier != nil {
		s.notifier.BookingCreated(detail)
	}
	return detail, nil
}

// Approve sets the final status. Only the item's owner may decide, and the
// transition is one-shot: there is no path back to WAITING and no guard
// against re-deciding an already decided booking.
func (s *Bookings) Approve(ctx context.Context, ownerID, bookingID int64, approve bool) (*models.BookingDetail, error) {
	detail, err := s.getDetail(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if detail.Item.OwnerID != ownerID {
		return nil, Forbiddenf("Error: owner item is incorrect.")
	}

	status := models.StatusRejected
	if approve {
		status = models.StatusApproved
	}
	if err := s.db.UpdateBookingStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	detail.Status = status

	s.logger.Info().
		Int64("booking_id", bookingID).
		Str("status", string(status)).
		Int64("owner_id", ownerID).
		Msg("booking decided")
	if s.notifier != nil {
		s.notifier.BookingDecided(detail)
	}
	return detail, nil
}

// Get fetches a booking by id. Any caller who knows the id may fetch it.
func (s *Bookings) Get(ctx context.Context, bookingID int64) (*models.BookingDetail, error) {
	return s.getDetail(ctx, bookingID)
}

// ListByBooker returns the booker's bookings under a state filter, newest
// start first.
func (s *Bookings) ListByBooker(ctx context.Context, bookerID int64, state string) ([]*models.BookingDetail, error) {
	if _, err := fetchUser(ctx, s.db, bookerID); err != nil {
		return nil, err
	}
	st, err := convertState(state)
	if err != nil {
		return nil, err
	}
	return s.db.GetBookingsByBooker(ctx, bookerID, st, time.Now())
}

// ListByOwner returns bookings of the owner's items under a state filter,
// newest start first.
func (s *Bookings) ListByOwner(ctx context.Context, ownerID int64, state string) ([]*models.BookingDetail, error) {
	if _, err := fetchUser(ctx, s.db, ownerID); err != nil {
		return nil, err
	}
	st, err := convertState(state)
	if err != nil {
		return nil, err
	}
	return s.db.GetBookingsByOwner(ctx, ownerID, st, time.Now())
}

// ListAll returns every booking, for the export report.
func (s *Bookings) ListAll(ctx context.Context) ([]*models.BookingDetail, error) {
	return s.db.GetAllBookings(ctx)
}

func (s *Bookings) getDetail(ctx context.Context, bookingID int64) (*models.BookingDetail, error) {
	detail, err := s.db.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFoundf("Error: booking is not found.")
		}
		return nil, err
	}
	return detail, nil
}

// convertState matches the filter case-sensitively; anything outside the
// closed set is reported as not found, which the API contract requires.
func convertState(state string) (models.BookingState, error) {
	st := models.ConvertBookingState(state)
	if st == models.StateUnknown {
		return st, NotFoundf("Error: state is not valid.")
	}
	return st, nil
}
