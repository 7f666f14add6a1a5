package domain

import (
	"strings"
	"time"
)

// TopicSeparator joins the submitted topics into the flattened topics column.
const TopicSeparator = ", "

// Meme represents one generated meme.
// A meme is owned by the user who created it and always points at the template it was rendered from.
type Meme struct {
	ID         string    `gorm:"type:text;primaryKey" json:"id"`
	Text0      string    `gorm:"type:text;not null" json:"text0"`
	Text1      string    `gorm:"type:text;not null" json:"text1"`
	Topics     string    `gorm:"type:text;not null" json:"topics"`
	Audience   string    `gorm:"type:text;not null" json:"audience"`
	URL        string    `gorm:"type:text;not null" json:"url"`
	StorageKey string    `gorm:"type:text" json:"storage_key,omitempty"`
	ArchiveURL string    `gorm:"type:text" json:"archive_url,omitempty"`
	UserID     string    `gorm:"type:text;not null;index:idx_memes_user" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	TemplateID string    `gorm:"type:text;not null;index:idx_memes_template" json:"template_id"`
	Template   *Template `gorm:"foreignKey:TemplateID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"template,omitempty"`
	CreatedAt  time.Time `gorm:"index:idx_memes_created_at" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for Meme.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Meme) TableName() string {
	return "memes"
}

// IsOwnedBy reports whether userID created the meme.
func (m *Meme) IsOwnedBy(userID string) bool {
	return m.UserID == userID
}

// FlattenTopics joins topics into the stored representation.
// Parameters:
//   - topics: topic list as submitted.
// Returns:
//   - string: topics joined with TopicSeparator.
func FlattenTopics(topics []string) string {
	return strings.Join(topics, TopicSeparator)
}
