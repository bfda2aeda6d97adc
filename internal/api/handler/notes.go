package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"studybuddy/backend/internal/models"
	"studybuddy/backend/internal/storage"
)

type notePayload struct {
	ID        uint     `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	UpdatedAt string   `json:"updated_at"`
}

func toNotePayload(note *models.Note) notePayload {
	return notePayload{
		ID:        note.ID,
		Title:     note.Title,
		Content:   note.Content,
		Tags:      note.Tags,
		UpdatedAt: note.UpdatedAt.Format(time.RFC3339),
	}
}

type noteRequest struct {
	Title   string   `json:"title" binding:"required,max=200"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// ListNotes returns the caller's notes, most recently updated first.
func (h *Handler) ListNotes(c *gin.Context) {
	actorID, _, _ := identity(c)

	notes, err := h.Store.NotesByUserID(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notes"})
		return
	}

	payloads := make([]notePayload, 0, len(notes))
	for i := range notes {
		payloads = append(payloads, toNotePayload(&notes[i]))
	}
	c.JSON(http.StatusOK, gin.H{"notes": payloads})
}

// CreateNote creates a note owned by the caller.
func (h *Handler) CreateNote(c *gin.Context) {
	actorID, _, _ := identity(c)

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Note title is required (max 200 characters)"})
		return
	}

	note := models.Note{
		UserID:  actorID,
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	}
	if err := h.Store.CreateNote(c.Request.Context(), &note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create note"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": toNotePayload(&note)})
}

// UpdateNote replaces the note's title, content and tags. Owner only.
func (h *Handler) UpdateNote(c *gin.Context) {
	actorID, _, _ := identity(c)
	ctx := c.Request.Context()

	note, ok := h.ownNote(c, actorID)
	if !ok {
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Note title is required (max 200 characters)"})
		return
	}

	note.Title = req.Title
	note.Content = req.Content
	note.Tags = req.Tags
	if err := h.Store.SaveNote(ctx, note); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update note"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": toNotePayload(note)})
}

// DeleteNote removes the note. Owner only.
func (h *Handler) DeleteNote(c *gin.Context) {
	actorID, _, _ := identity(c)

	note, ok := h.ownNote(c, actorID)
	if !ok {
		return
	}

	if err := h.Store.DeleteNote(c.Request.Context(), note.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete note"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ownNote loads the :id note and verifies the caller owns it, writing the
// error response itself otherwise.
func (h *Handler) ownNote(c *gin.Context, actorID string) (*models.Note, bool) {
	noteID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid note ID"})
		return nil, false
	}

	note, err := h.Store.NoteByID(c.Request.Context(), uint(noteID))
	if err != nil {
		if errors.Is(err, storage.ErrNoteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load note"})
		return nil, false
	}
	if note.UserID != actorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to access this note"})
		return nil, false
	}
	return note, true
}
