package service

import (
	"context"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// Items is the item catalog.
type Items struct {
	db     *database.DB
	logger zerolog.Logger
}

func NewItems(db *database.DB, logger *zerolog.Logger) *Items {
	return &Items{db: db, logger: logger.With().Str("component", "items").Logger()}
}

func (s *Items) Add(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if _, err := fetchUser(ctx, s.db, ownerID); err != nil {
		return nil, err
	}
	if item.RequestID != 0 {
		if _, err := fetchRequest(ctx, s.db, item.RequestID); err != nil {
			return nil, err
		}
	}

	item.OwnerID = ownerID
	if err := s.db.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item added")
	return item, nil
}

// Update applies the non-nil patch fields. Only the owner may update.
func (s *Items) Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := fetchItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := fetchUser(ctx, s.db, ownerID); err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, Forbiddenf("Error: owner item is incorrect.")
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.db.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item updated")
	return item, nil
}

func (s *Items) Get(ctx context.Context, itemID int64) (*models.ItemDetail, error) {
	item, err := fetchItem(ctx, s.db, itemID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.db.GetBookingsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	comments, err := s.db.GetCommentsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	return enrichItem(item, bookings, comments, time.Now()), nil
}

// List returns the owner's items with booking edges and comments attached,
// fetched in bulk rather than per item.
func (s *Items) List(ctx context.Context, ownerID int64) ([]*models.ItemDetail, error) {
	items, err := s.db.GetItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}

	bookings, err := s.db.GetBookingsByItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	comments, err := s.db.GetCommentsByItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	details := make([]*models.ItemDetail, 0, len(items))
	for _, item := range items {
		details = append(details, enrichItem(item, bookings[item.ID], comments[item.ID], now))
	}
	return details, nil
}

// Search returns available items whose name or description contains the
// text. Empty text yields an empty list, not the whole catalog.
func (s *Items) Search(ctx context.Context, text string) ([]*models.Item, error) {
	if text == "" {
		return []*models.Item{}, nil
	}
	items, err := s.db.SearchItems(ctx, text)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}

// AddComment stores a review. Only a user with a finished rental of the item
// may comment.
func (s *Items) AddComment(ctx context.Context, itemID, userID int64, text string) (*models.Comment, error) {
	finished, err := s.db.HasFinishedBooking(ctx, itemID, userID, time.Now())
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, Validationf("Error: booker %d is not found.", userID)
	}

	if _, err := fetchItem(ctx, s.db, itemID); err != nil {
		return nil, err
	}
	user, err := fetchUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:     text,
		ItemID:   itemID,
		AuthorID: userID,
		Created:  time.Now(),
	}
	if err := s.db.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	comment.AuthorName = user.Name
	s.logger.Info().Int64("item_id", itemID).Int64("author_id", userID).Msg("comment added")
	return comment, nil
}

func enrichItem(item *models.Item, bookings []*models.Booking, comments []models.Comment, now time.Time) *models.ItemDetail {
	if comments == nil {
		comments = []models.Comment{}
	}
	return &models.ItemDetail{
		Item:        *item,
		LastBooking: lastBookingTime(bookings, now),
		NextBooking: nextBookingTime(bookings, now),
		Comments:    comments,
	}
}

// lastBookingTime picks the latest end among past CANCELED bookings. The
// CANCELED filter is kept as-is for compatibility with existing consumers.
func lastBookingTime(bookings []*models.Booking, now time.Time) *time.Time {
	var last *time.Time
	for _, b := range bookings {
		if b.Status != models.StatusCanceled || !b.End.Before(now) {
			continue
		}
		if last == nil || b.End.After(*last) {
			end := b.End
			last = &end
		}
	}
	return last
}

func nextBookingTime(bookings []*models.Booking, now time.Time) *time.Time {
	var next *time.Time
	for _, b := range bookings {
		if !b.Start.After(now) {
			continue
		}
		if next == nil || b.Start.Before(*next) {
			start := b.Start
			next = &start
		}
	}
	return next
}
