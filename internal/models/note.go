package models

// NoteStatus represents the publication state of a note
type NoteStatus string

const (
	NoteDraft     NoteStatus = "draft"
	NotePublished NoteStatus = "published"
)

// Valid reports whether s is a known status
func (s NoteStatus) Valid() bool {
	return s == NoteDraft || s == NotePublished
}

// Note is a Markdown document. HTML is filled from the render cache at response time.
type Note struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	Title      string     `json:"title" gorm:"not null"`
	Summary    string     `json:"summary"`
	Content    string     `json:"content" gorm:"type:text"`
	CategoryID string     `json:"categoryId" gorm:"column:category_id;index"`
	Category   *Category  `json:"category,omitempty" gorm:"-"`
	Status     NoteStatus `json:"status" gorm:"not null;default:'draft';index"`
	ViewCount  int64      `json:"viewCount" gorm:"column:view_count;default:0"`
	AuthorID   string     `json:"authorId" gorm:"column:author_id;index"`
	HTML       string     `json:"html,omitempty" gorm:"-"`
	Timestamps
}

// TableName specifies the table name for Note Model
func (Note) TableName() string {
	return "notes"
}

// Category groups notes
type Category struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"unique;not null"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder" gorm:"column:sort_order;default:0"`
	Timestamps
}

func (Category) TableName() string {
	return "categories"
}
