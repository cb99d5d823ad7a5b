package models

import (
	"time"
)

// Question is keyed by its exact content for dedup lookups. A row exists only
// after an answer was generated for it, so AskCount is always >= 1.
type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null;index" json:"content"`
	Answer    string    `gorm:"type:text" json:"answer"`
	AskCount  int       `gorm:"not null;default:1" json:"ask_count"`
	UserID    *uint     `gorm:"index" json:"user_id"` // nil for anonymous submissions
	LastAsked time.Time `gorm:"index" json:"last_asked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
