package models

import "time"

// Event is owned by event-service; capacity is read-only here.
type Event struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;default:''" json:"name"`
	Capacity  int       `gorm:"not null;check:capacity >= 0" json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
