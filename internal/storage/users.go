package storage

import (
	"context"
	"errors"
	"log"

	"studybuddy/backend/internal/models"

	"gorm.io/gorm"
)

// CreateUser inserts a new user. Relies on the driver's error translation to
// detect a username collision.
func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	err := s.DB.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserExists
	}
	if err != nil {
		log.Printf("ERROR: Failed to create user %q: %v", user.Username, err)
	}
	return err
}

func (s *Service) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernamesByIDs resolves a set of user ids to display names in one query.
func (s *Service) UsernamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	type row struct {
		ID       string
		Username string
	}
	var rows []row
	if err := s.DB.WithContext(ctx).
		Model(&models.User{}).
		Select("id, username").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	names := make(map[string]string, len(rows))
	for _, r := range rows {
		names[r.ID] = r.Username
	}
	return names, nil
}
