package service

import (
	"context"
	"database/sql"
	"errors"

	"shareit/internal/database"
	"shareit/internal/models"
)

// Shared entity lookups. Each translates a missing row into the NotFound
// message the API contract promises.

func fetchUser(ctx context.Context, db *database.DB, id int64) (*models.User, error) {
	user, err := db.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFoundf("Error: user is not found.")
		}
		return nil, err
	}
	return user, nil
}

func fetchItem(ctx context.Context, db *database.DB, id int64) (*models.Item, error) {
	item, err := db.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFoundf("Error: item %d is not found.", id)
		}
		return nil, err
	}
	return item, nil
}

func fetchRequest(ctx context.Context, db *database.DB, id int64) (*models.ItemRequest, error) {
	request, err := db.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NotFoundf("Error: item request %d is not found.", id)
		}
		return nil, err
	}
	return request, nil
}
