// Package storagetest provides an in-memory storage.Storage for tests.
package storagetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"studybuddy/backend/internal/models"
	"studybuddy/backend/internal/storage"
)

// MockStorage implements storage.Storage for tests. Room, message, note,
// user and grant state live in maps so tests exercise real read-modify-write
// flows without a database; presence calls go through testify's mock so
// tests can set expectations on the time windows they receive.
type MockStorage struct {
	mock.Mock

	mu            sync.Mutex
	nextRoomID    uint
	nextMessageID uint
	nextNoteID    uint

	Rooms    map[uint]*models.Room
	Messages map[uint]*models.Message
	Notes    map[uint]*models.Note
	Users    map[string]*models.User
	Grants   map[string]map[uint]bool
	Events   []models.RoomEvent
}

func New() *MockStorage {
	return &MockStorage{
		Rooms:    make(map[uint]*models.Room),
		Messages: make(map[uint]*models.Message),
		Notes:    make(map[uint]*models.Note),
		Users:    make(map[string]*models.User),
		Grants:   make(map[string]map[uint]bool),
	}
}

// SeedUser registers a user and returns its id.
func (m *MockStorage) SeedUser(username string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := &models.User{ID: uuid.New().String(), Username: username}
	m.Users[user.ID] = user
	return user.ID
}

// SeedRoom stores a room, assigning an id when unset, and returns it.
func (m *MockStorage) SeedRoom(room models.Room) *models.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	if room.ID == 0 {
		m.nextRoomID++
		room.ID = m.nextRoomID
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}
	stored := room
	m.Rooms[room.ID] = &stored
	return &stored
}

// --- users ---

func (m *MockStorage) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Users {
		if existing.Username == user.Username {
			return storage.ErrUserExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	stored := *user
	m.Users[user.ID] = &stored
	return nil
}

func (m *MockStorage) UserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.Users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (m *MockStorage) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.Users {
		if user.Username == username {
			u := *user
			return &u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *MockStorage) UsernamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if user, ok := m.Users[id]; ok {
			names[id] = user.Username
		}
	}
	return names, nil
}

// --- rooms ---

func (m *MockStorage) CreateRoom(ctx context.Context, room *models.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRoomID++
	room.ID = m.nextRoomID
	room.CreatedAt = time.Now()
	stored := *room
	m.Rooms[room.ID] = &stored
	return nil
}

func (m *MockStorage) RoomByID(ctx context.Context, id uint) (*models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.Rooms[id]
	if !ok {
		return nil, storage.ErrRoomNotFound
	}
	r := *room
	return &r, nil
}

func (m *MockStorage) RoomByCode(ctx context.Context, code string) (*models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.Rooms {
		if room.IsPrivate && room.Code != nil && *room.Code == code {
			r := *room
			return &r, nil
		}
	}
	return nil, storage.ErrRoomNotFound
}

func (m *MockStorage) ListRooms(ctx context.Context) ([]models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rooms := make([]models.Room, 0, len(m.Rooms))
	for _, room := range m.Rooms {
		rooms = append(rooms, *room)
	}
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	return rooms, nil
}

func (m *MockStorage) DeleteRoom(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Rooms[id]; !ok {
		return storage.ErrRoomNotFound
	}
	delete(m.Rooms, id)
	for msgID, msg := range m.Messages {
		if msg.RoomID == id {
			delete(m.Messages, msgID)
		}
	}
	return nil
}

// MutateRoom mirrors the real implementation's contract: fn runs against a
// copy, and the copy replaces the stored row only when fn reports a change.
func (m *MockStorage) MutateRoom(ctx context.Context, id uint, fn func(room *models.Room) (bool, error)) (*models.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.Rooms[id]
	if !ok {
		return nil, storage.ErrRoomNotFound
	}
	working := *room
	changed, err := fn(&working)
	if err != nil {
		return nil, err
	}
	if changed {
		*room = working
	}
	result := working
	return &result, nil
}

func (m *MockStorage) IsCodeTaken(ctx context.Context, code string, excludeRoomID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, room := range m.Rooms {
		if room.ID == excludeRoomID {
			continue
		}
		if room.IsPrivate && room.Code != nil && *room.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// --- messages ---

func (m *MockStorage) CreateMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextMessageID++
	msg.ID = m.nextMessageID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	stored := *msg
	m.Messages[msg.ID] = &stored
	return nil
}

func (m *MockStorage) MessagesByRoomID(ctx context.Context, roomID uint) ([]storage.RoomMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var rows []storage.RoomMessage
	for _, msg := range m.Messages {
		if msg.RoomID != roomID {
			continue
		}
		username := ""
		if user, ok := m.Users[msg.UserID]; ok {
			username = user.Username
		}
		rows = append(rows, storage.RoomMessage{
			ID:        msg.ID,
			UserID:    msg.UserID,
			Username:  username,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID < rows[j].ID
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	return rows, nil
}

func (m *MockStorage) MessageByID(ctx context.Context, id uint) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.Messages[id]
	if !ok {
		return nil, storage.ErrMessageNotFound
	}
	copied := *msg
	return &copied, nil
}

func (m *MockStorage) DeleteMessage(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Messages[id]; !ok {
		return storage.ErrMessageNotFound
	}
	delete(m.Messages, id)
	return nil
}

// --- presence (expectation-driven) ---

func (m *MockStorage) TouchPresence(ctx context.Context, roomID uint, userID string, now time.Time) error {
	args := m.Called(ctx, roomID, userID, now)
	return args.Error(0)
}

func (m *MockStorage) ActiveUsernames(ctx context.Context, roomID uint, cutoff time.Time) ([]string, error) {
	args := m.Called(ctx, roomID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) PurgeStalePresence(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

// --- grants ---

func (m *MockStorage) GrantRoomAccess(ctx context.Context, sessionID string, roomID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Grants[sessionID] == nil {
		m.Grants[sessionID] = make(map[uint]bool)
	}
	m.Grants[sessionID][roomID] = true
	return nil
}

func (m *MockStorage) HasRoomAccess(ctx context.Context, sessionID string, roomID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Grants[sessionID][roomID], nil
}

func (m *MockStorage) GrantedRoomIDs(ctx context.Context, sessionID string) (map[uint]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[uint]bool, len(m.Grants[sessionID]))
	for id := range m.Grants[sessionID] {
		ids[id] = true
	}
	return ids, nil
}

// --- events ---

func (m *MockStorage) PublishRoomEvent(ctx context.Context, event models.RoomEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

// --- notes ---

func (m *MockStorage) CreateNote(ctx context.Context, note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextNoteID++
	note.ID = m.nextNoteID
	note.CreatedAt = time.Now()
	note.UpdatedAt = note.CreatedAt
	stored := *note
	m.Notes[note.ID] = &stored
	return nil
}

func (m *MockStorage) NotesByUserID(ctx context.Context, userID string) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var notes []models.Note
	for _, note := range m.Notes {
		if note.UserID == userID {
			notes = append(notes, *note)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes, nil
}

func (m *MockStorage) NoteByID(ctx context.Context, id uint) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.Notes[id]
	if !ok {
		return nil, storage.ErrNoteNotFound
	}
	copied := *note
	return &copied, nil
}

func (m *MockStorage) SaveNote(ctx context.Context, note *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Notes[note.ID]; !ok {
		return storage.ErrNoteNotFound
	}
	note.UpdatedAt = time.Now()
	stored := *note
	m.Notes[note.ID] = &stored
	return nil
}

func (m *MockStorage) DeleteNote(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Notes[id]; !ok {
		return storage.ErrNoteNotFound
	}
	delete(m.Notes, id)
	return nil
}
