package dto

// StartAttemptRequest begins a timed run through an assessment.
type StartAttemptRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// RecordAnswerRequest records or overwrites the user's answer for one
// question of an in-progress attempt. Exactly one of SelectedOption and
// TextAnswer should be set, matching the question type.
type RecordAnswerRequest struct {
	QuestionID       uint    `json:"question_id" binding:"required"`
	SelectedOption   *string `json:"selected_option,omitempty" binding:"omitempty,oneof=A B C D"`
	TextAnswer       *string `json:"text_answer,omitempty"`
	MarkedForReview  bool    `json:"marked_for_review"`
	Skipped          bool    `json:"skipped"`
	TimeSpentSeconds int     `json:"time_spent_seconds" binding:"omitempty,min=0"`

	// Optional test-player progress marker, persisted onto the attempt.
	QuestionIndex *int `json:"question_index,omitempty" binding:"omitempty,min=0"`
}
