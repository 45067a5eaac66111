package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// QuestionResponseDTO is the player-facing view of a question; answer keys
// are never included.
type QuestionResponseDTO struct {
	ID          uint    `json:"id"`
	Prompt      string  `json:"prompt"`
	Type        string  `json:"type"`
	OptionA     *string `json:"option_a,omitempty"`
	OptionB     *string `json:"option_b,omitempty"`
	OptionC     *string `json:"option_c,omitempty"`
	OptionD     *string `json:"option_d,omitempty"`
	Explanation *string `json:"explanation,omitempty"`
}

// AssessmentQuestionDTO is one slot of an assessment's ordered question set.
type AssessmentQuestionDTO struct {
	QuestionID   uint                `json:"question_id"`
	Marks        float64             `json:"marks"`
	DisplayOrder int                 `json:"display_order"`
	Question     QuestionResponseDTO `json:"question"`
}

// AssessmentResponseDTO is the full assessment detail used to start and
// render an attempt.
type AssessmentResponseDTO struct {
	ID              uint                    `json:"id"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description,omitempty"`
	DurationMinutes int                     `json:"duration_minutes"`
	TotalMarks      float64                 `json:"total_marks"`
	PassingMarks    float64                 `json:"passing_marks"`
	Questions       []AssessmentQuestionDTO `json:"questions,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}

// AssessmentSummaryDTO is used for listing assessments.
type AssessmentSummaryDTO struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalMarks      float64   `json:"total_marks"`
	PassingMarks    float64   `json:"passing_marks"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// AttemptResponseDTO is the attempt snapshot returned by every lifecycle
// operation; RemainingSeconds powers the test-player countdown.
type AttemptResponseDTO struct {
	ID                   uint       `json:"id"`
	UserID               uint       `json:"user_id"`
	AssessmentID         uint       `json:"assessment_id"`
	Status               string     `json:"status"`
	StartedAt            time.Time  `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	LastPauseAt          *time.Time `json:"last_pause_at,omitempty"`
	TotalPauseSeconds    int        `json:"total_pause_seconds"`
	CurrentQuestionIndex int        `json:"current_question_index"`
	TotalMarks           float64    `json:"total_marks"`
	Score                *float64   `json:"score,omitempty"`
	Accuracy             *float64   `json:"accuracy,omitempty"`
	Passed               *bool      `json:"passed,omitempty"`
	RemainingSeconds     int        `json:"remaining_seconds"`
}

// AttemptSummaryDTO is one row of a user's attempt history.
type AttemptSummaryDTO struct {
	ID           uint       `json:"id"`
	AssessmentID uint       `json:"assessment_id"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Score        *float64   `json:"score,omitempty"`
	Accuracy     *float64   `json:"accuracy,omitempty"`
	Passed       *bool      `json:"passed,omitempty"`
}

// AnswerRecordDTO is the current answer for one question, used by the resume
// flow to redisplay prior answers.
type AnswerRecordDTO struct {
	QuestionID       uint      `json:"question_id"`
	SelectedOption   *string   `json:"selected_option,omitempty"`
	TextAnswer       *string   `json:"text_answer,omitempty"`
	MarkedForReview  bool      `json:"marked_for_review"`
	Skipped          bool      `json:"skipped"`
	AnsweredAt       time.Time `json:"answered_at"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
}

// QuestionResultDTO is the per-question line of a scored attempt, for the
// review/explanation screen.
type QuestionResultDTO struct {
	QuestionID    uint    `json:"question_id"`
	DisplayOrder  int     `json:"display_order"`
	Marks         float64 `json:"marks"`
	UserAnswer    string  `json:"user_answer,omitempty"`
	CorrectAnswer string  `json:"correct_answer"`
	Answered      bool    `json:"answered"`
	IsCorrect     bool    `json:"is_correct"`
	MarksAwarded  float64 `json:"marks_awarded"`
}

// AttemptResultDTO is the final score report for a completed or expired attempt.
type AttemptResultDTO struct {
	AttemptID       uint                `json:"attempt_id"`
	AssessmentID    uint                `json:"assessment_id"`
	AssessmentTitle string              `json:"assessment_title,omitempty"`
	Status          string              `json:"status"`
	Score           float64             `json:"score"`
	Accuracy        float64             `json:"accuracy"`
	Passed          bool                `json:"passed"`
	TotalMarks      float64             `json:"total_marks"`
	PassingMarks    float64             `json:"passing_marks"`
	CorrectCount    int                 `json:"correct_count"`
	TotalQuestions  int                 `json:"total_questions"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	Questions       []QuestionResultDTO `json:"questions,omitempty"`
}
