package models

// Carousel is a homepage slide
type Carousel struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Title     string `json:"title" gorm:"not null"`
	ImageURL  string `json:"imageUrl" gorm:"column:image_url;not null"`
	LinkURL   string `json:"linkUrl" gorm:"column:link_url"`
	SortOrder int    `json:"sortOrder" gorm:"column:sort_order;default:0"`
	Active    bool   `json:"active" gorm:"not null"`
	Timestamps
}

func (Carousel) TableName() string {
	return "carousels"
}

// FeedbackStatus tracks whether an admin has handled a message
type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackResolved FeedbackStatus = "resolved"
)

// Feedback is a message left by a site visitor
type Feedback struct {
	ID      string         `json:"id" gorm:"primaryKey"`
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Content string         `json:"content" gorm:"type:text;not null"`
	Status  FeedbackStatus `json:"status" gorm:"not null;default:'pending'"`
	Timestamps
}

func (Feedback) TableName() string {
	return "feedback"
}

// All lists every model for migrations
func All() []any {
	return []any{&Category{}, &Note{}, &Role{}, &Admin{}, &Carousel{}, &Feedback{}}
}
