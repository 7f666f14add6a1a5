package domain

import "time"

// MaxEligibleBoxCount is the largest caption-box count a template may have
// to be used for generation; captions are always produced in pairs.
const MaxEligibleBoxCount = 2

// Template is a locally stored copy of a meme template from the external catalog.
// ID is the catalog's own identifier, so re-fetching the catalog maps onto the same rows.
type Template struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	BoxCount  int       `gorm:"not null;index:idx_templates_box_count" json:"box_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Template.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Template) TableName() string {
	return "templates"
}

// IsEligible reports whether the template can be filled with a top and bottom caption.
func (t *Template) IsEligible() bool {
	return t.BoxCount <= MaxEligibleBoxCount
}
