package model

import (
	"time"

	"gorm.io/gorm"
)

// AnswerRecord is the user's current answer for one question of one attempt.
// Keyed by (AttemptID, QuestionID) with upsert semantics: recording again for
// the same question replaces the previous value, last write wins.
type AnswerRecord struct {
	ID         uint     `gorm:"primarykey" json:"id"`
	AttemptID  uint     `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID uint     `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	Question   Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`

	// Exactly one of these is set, depending on the question type.
	SelectedOption *string `json:"selected_option,omitempty"`
	TextAnswer     *string `json:"text_answer,omitempty" gorm:"type:text"`

	MarkedForReview  bool      `json:"marked_for_review"`
	Skipped          bool      `json:"skipped"`
	AnsweredAt       time.Time `json:"answered_at"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`

	// Filled in by scoring when the attempt terminates; nil until then.
	IsCorrect    *bool   `json:"is_correct,omitempty"`
	MarksAwarded float64 `json:"marks_awarded"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
