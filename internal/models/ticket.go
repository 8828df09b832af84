package models

import (
	"time"

	"gorm.io/gorm"
)

// Ticket statuses: active, completed, on hold, cancelled.
var TicketStatuses = []string{"A", "C", "H", "X"}

type Ticket struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	Status      string         `gorm:"size:1;not null;default:A" json:"status"`
	UserID      uint           `gorm:"index;not null" json:"user_id"`
	Author      *User          `gorm:"foreignKey:UserID" json:"author,omitempty"`
}

// GetUserID returns the owning author's id, satisfying policy.Ownable.
func (t *Ticket) GetUserID() uint { return t.UserID }
