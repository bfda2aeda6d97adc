package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"studybuddy/backend/internal/config"
	"studybuddy/backend/internal/models"
	"studybuddy/backend/internal/storage"
	"studybuddy/backend/internal/storage/storagetest"
)

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ABC234", NormalizeCode("  abc234 "))
	assert.Equal(t, "XY7KQP", NormalizeCode("xY7kQp"))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestRandomCodeUsesSafeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := randomCode(config.CodeLength)
		assert.NoError(t, err)
		assert.Len(t, code, config.CodeLength)
		for _, r := range code {
			assert.Contains(t, config.CodeAlphabet, string(r))
		}
		// Ambiguous characters are excluded from the alphabet entirely.
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "1")
	}
}

// collidingStore reports the first n generated codes as taken.
type collidingStore struct {
	*storagetest.MockStorage
	remaining int
	checks    int
}

func (c *collidingStore) IsCodeTaken(ctx context.Context, code string, excludeRoomID uint) (bool, error) {
	c.checks++
	if c.remaining > 0 {
		c.remaining--
		return true, nil
	}
	return false, nil
}

func TestGenerateCodeRetriesOnCollision(t *testing.T) {
	store := &collidingStore{MockStorage: storagetest.New(), remaining: 3}
	svc := NewService(store)

	code, err := svc.GenerateCode(context.Background(), 0)
	assert.NoError(t, err)
	assert.Len(t, code, config.CodeLength)
	assert.Equal(t, 4, store.checks)
}

func TestGenerateCodeFallsBackToLongCode(t *testing.T) {
	store := &collidingStore{MockStorage: storagetest.New(), remaining: config.CodeMaxAttempts}
	svc := NewService(store)

	code, err := svc.GenerateCode(context.Background(), 0)
	assert.NoError(t, err)
	assert.Len(t, code, config.CodeMaxLength)
	assert.Equal(t, config.CodeMaxAttempts, store.checks, "the fallback code skips the uniqueness check")
}

func TestSetPrivacyIssuesAndClearsCode(t *testing.T) {
	store := storagetest.New()
	room := store.SeedRoom(models.Room{Name: "Quiet Corner", OwnerID: "owner-1"})
	svc := NewService(store)

	updated, err := svc.SetPrivacy(context.Background(), room.ID, "owner-1", true)
	assert.NoError(t, err)
	assert.True(t, updated.IsPrivate)
	assert.NotNil(t, updated.Code)
	assert.Len(t, *updated.Code, config.CodeLength)

	firstCode := *updated.Code

	updated, err = svc.SetPrivacy(context.Background(), room.ID, "owner-1", false)
	assert.NoError(t, err)
	assert.False(t, updated.IsPrivate)
	assert.Nil(t, updated.Code)

	// Going private again issues a fresh code rather than reviving the old one.
	updated, err = svc.SetPrivacy(context.Background(), room.ID, "owner-1", true)
	assert.NoError(t, err)
	assert.NotNil(t, updated.Code)
	if *updated.Code == firstCode {
		t.Logf("regenerated code matched by chance: %s", firstCode)
	}
}

func TestSetPrivacyRejectsNonOwner(t *testing.T) {
	store := storagetest.New()
	room := store.SeedRoom(models.Room{Name: "Quiet Corner", OwnerID: "owner-1"})
	svc := NewService(store)

	_, err := svc.SetPrivacy(context.Background(), room.ID, "stranger", true)
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.False(t, store.Rooms[room.ID].IsPrivate)
}

func TestSetPrivacyUnknownRoom(t *testing.T) {
	svc := NewService(storagetest.New())

	_, err := svc.SetPrivacy(context.Background(), 404, "owner-1", true)
	assert.ErrorIs(t, err, storage.ErrRoomNotFound)
}

func TestGrantSessionAccess(t *testing.T) {
	store := storagetest.New()
	code := "ABC234"
	room := store.SeedRoom(models.Room{Name: "Private", OwnerID: "owner-1", IsPrivate: true, Code: &code})
	public := store.SeedRoom(models.Room{Name: "Public", OwnerID: "owner-1"})
	svc := NewService(store)

	// Code entry is case-insensitive and tolerates surrounding whitespace.
	granted, err := svc.GrantSessionAccess(context.Background(), "sess-1", room, " abc234 ")
	assert.NoError(t, err)
	assert.True(t, granted)

	has, err := store.HasRoomAccess(context.Background(), "sess-1", room.ID)
	assert.NoError(t, err)
	assert.True(t, has)

	granted, err = svc.GrantSessionAccess(context.Background(), "sess-2", room, "WRONG1")
	assert.NoError(t, err)
	assert.False(t, granted)

	granted, err = svc.GrantSessionAccess(context.Background(), "sess-2", public, "ABC234")
	assert.NoError(t, err)
	assert.False(t, granted, "public rooms have no code to match")
}

func TestCanView(t *testing.T) {
	store := storagetest.New()
	code := "QRS567"
	private := store.SeedRoom(models.Room{Name: "Private", OwnerID: "owner-1", IsPrivate: true, Code: &code})
	public := store.SeedRoom(models.Room{Name: "Public", OwnerID: "owner-1"})
	svc := NewService(store)
	ctx := context.Background()

	ok, err := svc.CanView(ctx, public, "anyone", "sess-x")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanView(ctx, private, "owner-1", "sess-x")
	assert.NoError(t, err)
	assert.True(t, ok, "the owner never needs a grant")

	ok, err = svc.CanView(ctx, private, "stranger", "sess-x")
	assert.NoError(t, err)
	assert.False(t, ok)

	granted, err := svc.GrantSessionAccess(ctx, "sess-x", private, code)
	assert.NoError(t, err)
	assert.True(t, granted)

	ok, err = svc.CanView(ctx, private, "stranger", "sess-x")
	assert.NoError(t, err)
	assert.True(t, ok)

	// The grant belongs to the session, not the user.
	ok, err = svc.CanView(ctx, private, "stranger", "sess-y")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestFilterViewable(t *testing.T) {
	store := storagetest.New()
	code := "QRS567"
	private := store.SeedRoom(models.Room{Name: "Private", OwnerID: "owner-1", IsPrivate: true, Code: &code})
	ownPrivate := store.SeedRoom(models.Room{Name: "Mine", OwnerID: "viewer", IsPrivate: true})
	public := store.SeedRoom(models.Room{Name: "Public", OwnerID: "owner-1"})
	svc := NewService(store)
	ctx := context.Background()

	rooms := []models.Room{*private, *ownPrivate, *public}

	visible, err := svc.FilterViewable(ctx, rooms, "viewer", "sess-1")
	assert.NoError(t, err)
	assert.Len(t, visible, 2)

	granted, err := svc.GrantSessionAccess(ctx, "sess-1", private, code)
	assert.NoError(t, err)
	assert.True(t, granted)

	visible, err = svc.FilterViewable(ctx, rooms, "viewer", "sess-1")
	assert.NoError(t, err)
	assert.Len(t, visible, 3)
}
