package models

import "time"

type User struct {
	ID           int64  `gorm:"primaryKey"`
	Login        string `gorm:"uniqueIndex;not null"`
	DisplayName  string
	Email        string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:'user'"` // 'user' or 'admin'
	CreatedAt    time.Time
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// CanEdit reports whether u may manage the account identified by subjectID
// (self-edit or admin-on-behalf).
func (u *User) CanEdit(subjectID int64) bool {
	return u.ID == subjectID || u.IsAdmin()
}
