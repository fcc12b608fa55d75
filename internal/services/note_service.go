package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/notesd/internal/models"
)

// CreateNoteInput describes a new note.
type CreateNoteInput struct {
	Title     string
	Content   string
	TileColor string
	LabelID   *string
}

// UpdateNoteInput enumerates mutable note attributes. A LabelID pointing at
// an empty string detaches the note from its label.
type UpdateNoteInput struct {
	Title     *string
	Content   *string
	TileColor *string
	LabelID   *string
}

// NoteService manages notes owned by a single requesting user.
type NoteService struct {
	db *gorm.DB
}

// NewNoteService constructs a NoteService.
func NewNoteService(db *gorm.DB) (*NoteService, error) {
	if db == nil {
		return nil, errors.New("note service: db is required")
	}
	return &NoteService{db: db}, nil
}

// List returns the user's notes that are not archived, most recent first.
func (s *NoteService) List(ctx context.Context, userID string) ([]models.Note, error) {
	return s.list(ensureContext(ctx), userID, false)
}

// ListArchived returns the user's archived notes with their labels.
func (s *NoteService) ListArchived(ctx context.Context, userID string) ([]models.Note, error) {
	return s.list(ensureContext(ctx), userID, true)
}

func (s *NoteService) list(ctx context.Context, userID string, archived bool) ([]models.Note, error) {
	var notes []models.Note
	err := s.db.WithContext(ctx).
		Preload("Label").
		Where("user_id = ? AND is_archived = ?", userID, archived).
		Order("updated_at DESC").
		Find(&notes).Error
	if err != nil {
		return nil, internal(fmt.Errorf("note service: list notes: %w", err))
	}
	return notes, nil
}

// Create stores a note for the user.
func (s *NoteService) Create(ctx context.Context, userID string, input CreateNoteInput) (*models.Note, error) {
	ctx = ensureContext(ctx)

	labelID := optionalID(input.LabelID)
	if labelID != nil {
		if err := s.ensureLabel(ctx, userID, *labelID); err != nil {
			return nil, err
		}
	}

	note := &models.Note{
		UserID:    userID,
		LabelID:   labelID,
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		TileColor: strings.TrimSpace(input.TileColor),
	}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, internal(fmt.Errorf("note service: create note: %w", err))
	}
	return s.Get(ctx, userID, note.ID)
}

// Get loads one of the user's notes.
func (s *NoteService) Get(ctx context.Context, userID, id string) (*models.Note, error) {
	ctx = ensureContext(ctx)

	var note models.Note
	err := s.db.WithContext(ctx).
		Preload("Label").
		Take(&note, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoteNotFound
	}
	if err != nil {
		return nil, internal(fmt.Errorf("note service: load note: %w", err))
	}
	return &note, nil
}

// Update applies the provided fields to one of the user's notes.
func (s *NoteService) Update(ctx context.Context, userID, id string, input UpdateNoteInput) (*models.Note, error) {
	ctx = ensureContext(ctx)

	note, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if title, ok := trimmedPtr(input.Title); ok {
		updates["title"] = title
	}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if color, ok := trimmedPtr(input.TileColor); ok {
		updates["tile_color"] = color
	}
	if input.LabelID != nil {
		labelID := optionalID(input.LabelID)
		if labelID != nil {
			if err := s.ensureLabel(ctx, userID, *labelID); err != nil {
				return nil, err
			}
		}
		updates["label_id"] = labelID
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(note).Updates(updates).Error; err != nil {
			return nil, internal(fmt.Errorf("note service: update note: %w", err))
		}
	}
	return s.Get(ctx, userID, id)
}

// SetArchived moves a note into or out of the archive.
func (s *NoteService) SetArchived(ctx context.Context, userID, id string, archived bool) (*models.Note, error) {
	ctx = ensureContext(ctx)

	note, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(note).Update("is_archived", archived).Error; err != nil {
		return nil, internal(fmt.Errorf("note service: archive note: %w", err))
	}
	return s.Get(ctx, userID, id)
}

// Delete removes one of the user's notes.
func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Note{})
	if result.Error != nil {
		return internal(fmt.Errorf("note service: delete note: %w", result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrNoteNotFound
	}
	return nil
}

func (s *NoteService) ensureLabel(ctx context.Context, userID, labelID string) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Label{}).
		Where("id = ? AND user_id = ?", labelID, userID).
		Count(&count).Error
	if err != nil {
		return internal(fmt.Errorf("note service: check label: %w", err))
	}
	if count == 0 {
		return ErrLabelNotFound
	}
	return nil
}
