package models

import (
	"time"
)

// Vote holds at most one row per (question, user); repeat votes overwrite
// IsPositive instead of adding rows. Tallies are always counted from the
// table on read, never cached on the question.
type Vote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_votes_question_user,priority:1" json:"question_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_votes_question_user,priority:2" json:"user_id"`
	IsPositive bool      `gorm:"not null" json:"is_positive"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
