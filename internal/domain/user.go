package domain

import "time"

// User is an account that can generate and edit memes.
// Credits gate generation for non-admin users.
type User struct {
	ID           string    `gorm:"type:text;primaryKey" json:"id"`
	Username     string    `gorm:"type:text;not null;uniqueIndex:idx_users_username" json:"username"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	Credits      int       `gorm:"not null;default:0" json:"credits"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// CanEdit reports whether the user may change the given meme.
func (u *User) CanEdit(m *Meme) bool {
	return u.IsAdmin || m.IsOwnedBy(u.ID)
}
