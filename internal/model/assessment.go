package model

import (
	"time"

	"gorm.io/gorm"
)

type Assessment struct {
	ID              uint                 `gorm:"primarykey" json:"id"`
	Title           string               `json:"title" gorm:"not null;uniqueIndex"` // "SSC CGL Mock Test 1"
	Description     string               `json:"description,omitempty"`
	DurationMinutes int                  `json:"duration_minutes" gorm:"not null"`
	TotalMarks      float64              `json:"total_marks" gorm:"not null"`
	PassingMarks    float64              `json:"passing_marks" gorm:"not null"`
	Questions       []AssessmentQuestion `json:"questions,omitempty" gorm:"foreignKey:AssessmentID"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	DeletedAt       gorm.DeletedAt       `gorm:"index" json:"-"`
}

// AssessmentQuestion links a question into an assessment with its marks and
// display position. Marks live here, not on the question, so the same
// question can carry different weight in different assessments.
type AssessmentQuestion struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	AssessmentID uint           `json:"assessment_id" gorm:"not null;index"`
	QuestionID   uint           `json:"question_id" gorm:"not null;index"`
	Question     Question       `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	Marks        float64        `json:"marks" gorm:"not null"`
	DisplayOrder int            `json:"display_order" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
