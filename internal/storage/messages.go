package storage

import (
	"context"
	"errors"
	"log"

	"studybuddy/backend/internal/models"

	"gorm.io/gorm"
)

// CreateMessage saves a chat message. The ID and CreatedAt fields are filled
// in by GORM on insert.
func (s *Service) CreateMessage(ctx context.Context, msg *models.Message) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %d: %v", msg.RoomID, err)
		return err
	}
	return nil
}

// MessagesByRoomID returns the room's messages joined with author usernames,
// oldest first.
func (s *Service) MessagesByRoomID(ctx context.Context, roomID uint) ([]RoomMessage, error) {
	var rows []RoomMessage
	err := s.DB.WithContext(ctx).
		Model(&models.Message{}).
		Select("messages.id, messages.user_id, users.username, messages.content, messages.created_at").
		Joins("JOIN users ON users.id = messages.user_id").
		Where("messages.room_id = ?", roomID).
		Order("messages.created_at asc").
		Scan(&rows).Error
	if err != nil {
		log.Printf("ERROR: Failed to get messages for room %d: %v", roomID, err)
		return nil, err
	}
	return rows, nil
}

func (s *Service) MessageByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	err := s.DB.WithContext(ctx).First(&msg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) DeleteMessage(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Message{}, id)
	if res.Error != nil {
		log.Printf("ERROR: Failed to delete message %d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
