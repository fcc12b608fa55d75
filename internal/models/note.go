package models

// Note is a user owned document, optionally filed under a label.
type Note struct {
	BaseModel

	UserID     string  `gorm:"type:uuid;not null;index" json:"userId"`
	LabelID    *string `gorm:"type:uuid;index" json:"labelId"`
	Label      *Label  `gorm:"foreignKey:LabelID" json:"label,omitempty"`
	Title      string  `gorm:"size:255" json:"title"`
	Content    string  `gorm:"type:text" json:"content"`
	TileColor  string  `gorm:"size:100" json:"tileColor"`
	IsArchived bool    `gorm:"not null;default:false" json:"isArchived"`
}
