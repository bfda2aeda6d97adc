package storage

import (
	"context"
	"errors"
	"log"

	"studybuddy/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) CreateNote(ctx context.Context, note *models.Note) error {
	if err := s.DB.WithContext(ctx).Create(note).Error; err != nil {
		log.Printf("ERROR: Failed to create note for user %s: %v", note.UserID, err)
		return err
	}
	return nil
}

// NotesByUserID returns the user's notes, most recently updated first.
func (s *Service) NotesByUserID(ctx context.Context, userID string) ([]models.Note, error) {
	var notes []models.Note
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&notes).Error
	if err != nil {
		log.Printf("ERROR: Failed to list notes for user %s: %v", userID, err)
		return nil, err
	}
	return notes, nil
}

func (s *Service) NoteByID(ctx context.Context, id uint) (*models.Note, error) {
	var note models.Note
	err := s.DB.WithContext(ctx).First(&note, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *Service) SaveNote(ctx context.Context, note *models.Note) error {
	return s.DB.WithContext(ctx).Save(note).Error
}

func (s *Service) DeleteNote(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Note{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}
