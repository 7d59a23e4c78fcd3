package service

import (
	"context"
	"errors"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// Users is the user registry.
type Users struct {
	db     *database.DB
	logger zerolog.Logger
}

func NewUsers(db *database.DB, logger *zerolog.Logger) *Users {
	return &Users{db: db, logger: logger.With().Str("component", "users").Logger()}
}

func (s *Users) Add(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Email == "" {
		return nil, Validationf("Email is empty.")
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, Conflictf("Email already exists")
		}
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Str("name", user.Name).Msg("user added")
	return user, nil
}

// Update applies the non-nil patch fields and re-validates the merged user.
func (s *Users) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := fetchUser(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if user.Email == "" {
		return nil, Validationf("Email is empty.")
	}

	if err := s.db.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, Conflictf("Email already exists")
		}
		return nil, err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user updated")
	return user, nil
}

func (s *Users) Get(ctx context.Context, id int64) (*models.User, error) {
	return fetchUser(ctx, s.db, id)
}

// Delete removes a user by id. Removing an absent user is not an error.
func (s *Users) Delete(ctx context.Context, id int64) error {
	if err := s.db.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
