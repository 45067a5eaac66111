package model

import (
	"time"

	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptPaused     AttemptStatus = "paused"
	AttemptCompleted  AttemptStatus = "completed"
	AttemptExpired    AttemptStatus = "expired"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// IsTerminal reports whether no further transition may leave the status.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptCompleted || s == AttemptExpired || s == AttemptAbandoned
}

// IsActive reports whether the attempt still counts against the
// one-active-attempt-per-user-per-assessment constraint.
func (s AttemptStatus) IsActive() bool {
	return s == AttemptInProgress || s == AttemptPaused
}

// Attempt is one user's run through one assessment. Rows are never deleted;
// the status only ever moves forward through the lifecycle.
type Attempt struct {
	ID           uint          `gorm:"primarykey" json:"id"`
	UserID       uint          `json:"user_id" gorm:"not null;index"`
	AssessmentID uint          `json:"assessment_id" gorm:"not null;index"`
	Assessment   Assessment    `json:"assessment,omitempty" gorm:"foreignKey:AssessmentID"`
	Status       AttemptStatus `json:"status" gorm:"not null;default:'in_progress';index"`

	StartedAt         time.Time  `json:"started_at" gorm:"not null"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"` // set iff status is completed or expired
	LastPauseAt       *time.Time `json:"last_pause_at,omitempty"`
	TotalPauseSeconds int        `json:"total_pause_seconds"`

	CurrentQuestionIndex int `json:"current_question_index"`

	// Result fields, populated once the attempt reaches a scored terminal state.
	TotalMarks float64  `json:"total_marks"`
	Score      *float64 `json:"score,omitempty"`
	Accuracy   *float64 `json:"accuracy,omitempty"`
	Passed     *bool    `json:"passed,omitempty"`

	// Optimistic concurrency token; every persisted mutation bumps it.
	Version uint `json:"-" gorm:"not null;default:1"`

	Answers   []AnswerRecord `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
