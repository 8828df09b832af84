package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated user in the system. A user is also
// the author of their tickets.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	IsManager bool           `gorm:"not null;default:false" json:"is_manager"`
	Tickets   []Ticket       `gorm:"foreignKey:UserID" json:"tickets,omitempty"`
}

func (u *User) GetUserID() uint { return u.ID }
