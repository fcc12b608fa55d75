package models

// DefaultLabelTitle is used when a label is created without a title.
const DefaultLabelTitle = "Uncategorized"

// Label groups notes of a single user.
type Label struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"userId"`
	Title  string `gorm:"size:255;not null;default:Uncategorized" json:"title"`
	Notes  []Note `gorm:"foreignKey:LabelID" json:"-"`
}
