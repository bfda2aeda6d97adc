package storage

import (
	"context"
	"errors"
	"log"

	"studybuddy/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateRoom saves a new room in PostgreSQL.
func (s *Service) CreateRoom(ctx context.Context, room *models.Room) error {
	if err := s.DB.WithContext(ctx).Create(room).Error; err != nil {
		log.Printf("ERROR: Failed to create room %q: %v", room.Name, err)
		return err
	}
	return nil
}

func (s *Service) RoomByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := s.DB.WithContext(ctx).First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %d: %v", id, err)
		return nil, err
	}
	return &room, nil
}

// RoomByCode finds the private room using the access code. Callers normalize
// the code first; stored codes are already uppercase.
func (s *Service) RoomByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	err := s.DB.WithContext(ctx).
		Where("is_private = ? AND code = ?", true, code).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to look up room by code: %v", err)
		return nil, err
	}
	return &room, nil
}

// ListRooms returns every room, newest first. Visibility filtering happens
// above the storage layer.
func (s *Service) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := s.DB.WithContext(ctx).Order("created_at desc").Find(&rooms).Error; err != nil {
		log.Printf("ERROR: Failed to list rooms: %v", err)
		return nil, err
	}
	return rooms, nil
}

// DeleteRoom removes the room; its messages and presence rows go with it via
// the ON DELETE CASCADE constraints.
func (s *Service) DeleteRoom(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Room{}, id)
	if res.Error != nil {
		log.Printf("ERROR: Failed to delete room %d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// MutateRoom locks the room row with SELECT ... FOR UPDATE, applies fn and
// saves the result when fn reports a change. Errors from fn abort the
// transaction untouched.
func (s *Service) MutateRoom(ctx context.Context, id uint, fn func(room *models.Room) (bool, error)) (*models.Room, error) {
	var room models.Room
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}

		changed, err := fn(&room)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return tx.Save(&room).Error
	})
	if err != nil {
		if !errors.Is(err, ErrRoomNotFound) {
			log.Printf("ERROR: Room %d mutation failed: %v", id, err)
		}
		return nil, err
	}
	return &room, nil
}

// IsCodeTaken reports whether another private room already uses the code.
func (s *Service) IsCodeTaken(ctx context.Context, code string, excludeRoomID uint) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.Room{}).
		Where("is_private = ? AND code = ? AND id <> ?", true, code, excludeRoomID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
