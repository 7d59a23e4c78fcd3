package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

const requestSelect = `SELECT r.id, r.description, r.requester_id, r.created_at,
                 u.id, u.name, u.email
          FROM requests r
          JOIN users u ON u.id = r.requester_id`

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query := `INSERT INTO requests (description, requester_id, created_at) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		request.Description,
		request.RequesterID,
		request.Created.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := requestSelect + ` WHERE r.id = ?`
	r := &models.ItemRequest{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.Description, &r.RequesterID, &r.Created,
		&r.Requester.ID, &r.Requester.Name, &r.Requester.Email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}
	return r, nil
}

func (db *DB) GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	query := requestSelect + ` WHERE r.requester_id = ? ORDER BY r.created_at DESC, r.id`
	return db.queryRequests(ctx, query, requesterID)
}

func (db *DB) GetAllRequests(ctx context.Context) ([]*models.ItemRequest, error) {
	query := requestSelect + ` ORDER BY r.created_at DESC, r.id`
	return db.queryRequests(ctx, query)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]*models.ItemRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ItemRequest
	for rows.Next() {
		r := &models.ItemRequest{}
		err := rows.Scan(
			&r.ID, &r.Description, &r.RequesterID, &r.Created,
			&r.Requester.ID, &r.Requester.Name, &r.Requester.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}
	return requests, nil
}
