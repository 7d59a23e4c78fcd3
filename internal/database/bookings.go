package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

const bookingDetailSelect = `SELECT b.id, b.start_time, b.end_time, b.status,
                 i.id, i.name, i.description, i.available, i.owner_id, i.request_id,
                 u.id, u.name, u.email
          FROM bookings b
          JOIN items i ON i.id = b.item_id
          JOIN users u ON u.id = b.booker_id`

func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `INSERT INTO bookings (start_time, end_time, item_id, booker_id, status)
              VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		booking.Start.UTC(),
		booking.End.UTC(),
		booking.ItemID,
		booking.BookerID,
		booking.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	booking.ID = id
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.BookingDetail, error) {
	query := bookingDetailSelect + ` WHERE b.id = ?`
	b := &models.BookingDetail{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Start, &b.End, &b.Status,
		&b.Item.ID, &b.Item.Name, &b.Item.Description, &b.Item.Available, &b.Item.OwnerID, &b.Item.RequestID,
		&b.Booker.ID, &b.Booker.Name, &b.Booker.Email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	b.ItemID = b.Item.ID
	b.BookerID = b.Booker.ID
	return b, nil
}

func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	query := `UPDATE bookings SET status = ? WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return nil
}

// bookingStateFilter builds the WHERE fragment and args for a state filter
// evaluated against now. The by-booker and by-owner list queries share it.
func bookingStateFilter(state models.BookingState, now time.Time) (string, []any) {
	switch state {
	case models.StateCurrent:
		return ` AND b.start_time < ? AND b.end_time > ?`, []any{now.UTC(), now.UTC()}
	case models.StatePast:
		return ` AND b.end_time < ?`, []any{now.UTC()}
	case models.StateFuture:
		return ` AND b.start_time > ?`, []any{now.UTC()}
	case models.StateWaiting, models.StateRejected:
		return ` AND b.status = ?`, []any{string(state)}
	default:
		return ``, nil
	}
}

func (db *DB) GetBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time) ([]*models.BookingDetail, error) {
	filter, filterArgs := bookingStateFilter(state, now)
	query := bookingDetailSelect + ` WHERE b.booker_id = ?` + filter + ` ORDER BY b.start_time DESC, b.id`
	args := append([]any{bookerID}, filterArgs...)
	return db.queryBookingDetails(ctx, query, args...)
}

func (db *DB) GetBookingsByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time) ([]*models.BookingDetail, error) {
	filter, filterArgs := bookingStateFilter(state, now)
	query := bookingDetailSelect + ` WHERE i.owner_id = ?` + filter + ` ORDER BY b.start_time DESC, b.id`
	args := append([]any{ownerID}, filterArgs...)
	return db.queryBookingDetails(ctx, query, args...)
}

// GetAllBookings returns every booking with item and booker attached,
// newest start first. Used by the export endpoint.
func (db *DB) GetAllBookings(ctx context.Context) ([]*models.BookingDetail, error) {
	query := bookingDetailSelect + ` ORDER BY b.start_time DESC, b.id`
	return db.queryBookingDetails(ctx, query)
}

func (db *DB) GetBookingsByItem(ctx context.Context, itemID int64) ([]*models.Booking, error) {
	query := `SELECT id, start_time, end_time, item_id, booker_id, status
              FROM bookings WHERE item_id = ?`
	rows, err := db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by item: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

// GetBookingsByItems fetches bookings for a set of items in one query,
// grouped by item id.
func (db *DB) GetBookingsByItems(ctx context.Context, itemIDs []int64) (map[int64][]*models.Booking, error) {
	grouped := make(map[int64][]*models.Booking)
	if len(itemIDs) == 0 {
		return grouped, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(itemIDs)), ",")
	query := `SELECT id, start_time, end_time, item_id, booker_id, status
              FROM bookings WHERE item_id IN (` + placeholders + `)`
	args := make([]any, 0, len(itemIDs))
	for _, id := range itemIDs {
		args = append(args, id)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings by items: %w", err)
	}
	defer rows.Close()

	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		grouped[b.ItemID] = append(grouped[b.ItemID], b)
	}
	return grouped, nil
}

// HasFinishedBooking reports whether the user has at least one booking of
// the item that ended before the given time.
func (db *DB) HasFinishedBooking(ctx context.Context, itemID, bookerID int64, before time.Time) (bool, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE item_id = ? AND booker_id = ? AND end_time < ?`
	var count int
	err := db.QueryRowContext(ctx, query, itemID, bookerID, before.UTC()).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to count finished bookings: %w", err)
	}
	return count > 0, nil
}

func (db *DB) queryBookingDetails(ctx context.Context, query string, args ...any) ([]*models.BookingDetail, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.BookingDetail
	for rows.Next() {
		b := &models.BookingDetail{}
		err := rows.Scan(
			&b.ID, &b.Start, &b.End, &b.Status,
			&b.Item.ID, &b.Item.Name, &b.Item.Description, &b.Item.Available, &b.Item.OwnerID, &b.Item.RequestID,
			&b.Booker.ID, &b.Booker.Name, &b.Booker.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.ItemID = b.Item.ID
		b.BookerID = b.Booker.ID
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

func scanBookings(rows *sql.Rows) ([]*models.Booking, error) {
	var bookings []*models.Booking
	for rows.Next() {
		b := &models.Booking{}
		err := rows.Scan(&b.ID, &b.Start, &b.End, &b.ItemID, &b.BookerID, &b.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}
