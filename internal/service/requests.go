package service

import (
	"context"
	"time"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// Requests is the "wanted item" board.
type Requests struct {
	db     *database.DB
	logger zerolog.Logger
}

func NewRequests(db *database.DB, logger *zerolog.Logger) *Requests {
	return &Requests{db: db, logger: logger.With().Str("component", "requests").Logger()}
}

func (s *Requests) Add(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error) {
	requester, err := fetchUser(ctx, s.db, requesterID)
	if err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		Description: description,
		RequesterID: requesterID,
		Created:     time.Now(),
	}
	if err := s.db.CreateRequest(ctx, request); err != nil {
		return nil, err
	}
	request.Requester = *requester
	s.logger.Info().Int64("request_id", request.ID).Int64("requester_id", requesterID).Msg("request added")
	return request, nil
}

// Get fetches a request and attaches the live list of items that answer it.
// The list is a reverse lookup, not stored state.
func (s *Requests) Get(ctx context.Context, id int64) (*models.ItemRequest, error) {
	request, err := fetchRequest(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := s.attachItems(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *Requests) ListByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	if _, err := fetchUser(ctx, s.db, requesterID); err != nil {
		return nil, err
	}
	requests, err := s.db.GetRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	for _, r := range requests {
		if err := s.attachItems(ctx, r); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (s *Requests) ListAll(ctx context.Context) ([]*models.ItemRequest, error) {
	requests, err := s.db.GetAllRequests(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range requests {
		if err := s.attachItems(ctx, r); err != nil {
			return nil, err
		}
	}
	return requests, nil
}

func (s *Requests) attachItems(ctx context.Context, request *models.ItemRequest) error {
	items, err := s.db.GetItemsByRequest(ctx, request.ID)
	if err != nil {
		return err
	}
	request.Items = make([]models.Item, 0, len(items))
	for _, item := range items {
		request.Items = append(request.Items, *item)
	}
	return nil
}
