package dto

// QuestionCreateDTO is used within AssessmentCreateDTO for admin assessment creation.
type QuestionCreateDTO struct {
	Prompt string `json:"prompt" binding:"required"`
	Type   string `json:"type" binding:"required,oneof=single_choice text"`

	OptionA       *string `json:"option_a"`
	OptionB       *string `json:"option_b"`
	OptionC       *string `json:"option_c"`
	OptionD       *string `json:"option_d"`
	CorrectOption *string `json:"correct_option" binding:"omitempty,oneof=A B C D"`
	CorrectText   *string `json:"correct_text"`
	Explanation   *string `json:"explanation"`

	Marks        float64 `json:"marks" binding:"required,gt=0"`
	DisplayOrder int     `json:"display_order" binding:"required,min=1"`
}

// AssessmentCreateDTO is for admin to create a new assessment with all its
// questions. TotalMarks is derived from the question marks, not supplied.
type AssessmentCreateDTO struct {
	Title           string              `json:"title" binding:"required"`
	Description     string              `json:"description,omitempty"`
	DurationMinutes int                 `json:"duration_minutes" binding:"required,gt=0"`
	PassingMarks    float64             `json:"passing_marks" binding:"gte=0"`
	Questions       []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// QuestionUpdateDTO updates a question in the question bank.
type QuestionUpdateDTO struct {
	Prompt        *string `json:"prompt"`
	OptionA       *string `json:"option_a"`
	OptionB       *string `json:"option_b"`
	OptionC       *string `json:"option_c"`
	OptionD       *string `json:"option_d"`
	CorrectOption *string `json:"correct_option" binding:"omitempty,oneof=A B C D"`
	CorrectText   *string `json:"correct_text"`
	Explanation   *string `json:"explanation"`
}
