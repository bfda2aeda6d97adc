package storage

import (
	"context"
	"errors"
	"time"

	"studybuddy/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNoteNotFound    = errors.New("note not found")
)

// Storage is the persistence boundary every service works against.
// *Service backs it with PostgreSQL and Redis; tests back it with a mock.
type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernamesByIDs(ctx context.Context, ids []string) (map[string]string, error)

	CreateRoom(ctx context.Context, room *models.Room) error
	RoomByID(ctx context.Context, id uint) (*models.Room, error)
	RoomByCode(ctx context.Context, code string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	DeleteRoom(ctx context.Context, id uint) error
	// MutateRoom runs fn on the room inside a transaction holding a row lock,
	// saving the room only when fn reports a change. Timer transitions and
	// privacy toggles go through here so concurrent read-modify-writes on the
	// same room serialize at the database.
	MutateRoom(ctx context.Context, id uint, fn func(room *models.Room) (bool, error)) (*models.Room, error)
	IsCodeTaken(ctx context.Context, code string, excludeRoomID uint) (bool, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	MessagesByRoomID(ctx context.Context, roomID uint) ([]RoomMessage, error)
	MessageByID(ctx context.Context, id uint) (*models.Message, error)
	DeleteMessage(ctx context.Context, id uint) error

	TouchPresence(ctx context.Context, roomID uint, userID string, now time.Time) error
	ActiveUsernames(ctx context.Context, roomID uint, cutoff time.Time) ([]string, error)
	PurgeStalePresence(ctx context.Context, olderThan time.Time) (int64, error)

	GrantRoomAccess(ctx context.Context, sessionID string, roomID uint) error
	HasRoomAccess(ctx context.Context, sessionID string, roomID uint) (bool, error)
	GrantedRoomIDs(ctx context.Context, sessionID string) (map[uint]bool, error)

	PublishRoomEvent(ctx context.Context, event models.RoomEvent) error

	CreateNote(ctx context.Context, note *models.Note) error
	NotesByUserID(ctx context.Context, userID string) ([]models.Note, error)
	NoteByID(ctx context.Context, id uint) (*models.Note, error)
	SaveNote(ctx context.Context, note *models.Note) error
	DeleteNote(ctx context.Context, id uint) error
}

// RoomMessage is a chat message joined with its author's username, ready for
// the message feed.
type RoomMessage struct {
	ID        uint
	UserID    string
	Username  string
	Content   string
	CreatedAt time.Time
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}
