package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/notesd/internal/models"
)

// LabelService manages labels owned by a single requesting user.
type LabelService struct {
	db *gorm.DB
}

// NewLabelService constructs a LabelService.
func NewLabelService(db *gorm.DB) (*LabelService, error) {
	if db == nil {
		return nil, errors.New("label service: db is required")
	}
	return &LabelService{db: db}, nil
}

// List returns the user's labels ordered by title.
func (s *LabelService) List(ctx context.Context, userID string) ([]models.Label, error) {
	ctx = ensureContext(ctx)

	var labels []models.Label
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("title ASC").
		Find(&labels).Error
	if err != nil {
		return nil, internal(fmt.Errorf("label service: list labels: %w", err))
	}
	return labels, nil
}

// Create stores a label. Blank titles fall back to the default label title.
func (s *LabelService) Create(ctx context.Context, userID, title string) (*models.Label, error) {
	ctx = ensureContext(ctx)

	label := &models.Label{UserID: userID, Title: labelTitle(title)}
	if err := s.db.WithContext(ctx).Create(label).Error; err != nil {
		return nil, internal(fmt.Errorf("label service: create label: %w", err))
	}
	return label, nil
}

// Get loads one of the user's labels.
func (s *LabelService) Get(ctx context.Context, userID, id string) (*models.Label, error) {
	ctx = ensureContext(ctx)

	var label models.Label
	err := s.db.WithContext(ctx).Take(&label, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLabelNotFound
	}
	if err != nil {
		return nil, internal(fmt.Errorf("label service: load label: %w", err))
	}
	return &label, nil
}

// Rename changes a label's title.
func (s *LabelService) Rename(ctx context.Context, userID, id, title string) (*models.Label, error) {
	ctx = ensureContext(ctx)

	label, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	title = labelTitle(title)
	if err := s.db.WithContext(ctx).Model(label).Update("title", title).Error; err != nil {
		return nil, internal(fmt.Errorf("label service: rename label: %w", err))
	}
	label.Title = title
	return label, nil
}

// Delete removes a label and detaches it from the user's notes.
func (s *LabelService) Delete(ctx context.Context, userID, id string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Note{}).
			Where("label_id = ? AND user_id = ?", id, userID).
			Update("label_id", nil).Error
		if err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Label{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrLabelNotFound
		}
		return nil
	})
	if errors.Is(err, ErrLabelNotFound) {
		return ErrLabelNotFound
	}
	if err != nil {
		return internal(fmt.Errorf("label service: delete label: %w", err))
	}
	return nil
}

func labelTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.DefaultLabelTitle
	}
	return title
}
