package service

import (
	"context"
	"testing"

	"github.com/prateek8318/RankUpAPI-sub001/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choiceQuestionDTO(order int, marks float64) dto.QuestionCreateDTO {
	return dto.QuestionCreateDTO{
		Prompt:        "What is 2+2?",
		Type:          "single_choice",
		OptionA:       strPtr("4"),
		OptionB:       strPtr("5"),
		CorrectOption: strPtr("A"),
		Marks:         marks,
		DisplayOrder:  order,
	}
}

func TestCreateAssessment_DerivesTotalMarks(t *testing.T) {
	repo := newFakeAssessmentRepo()
	svc := NewAdminAssessmentService(repo)

	resp, err := svc.CreateAssessment(context.Background(), dto.AssessmentCreateDTO{
		Title:           "SSC CGL Mock Test 1",
		DurationMinutes: 60,
		PassingMarks:    5,
		Questions: []dto.QuestionCreateDTO{
			choiceQuestionDTO(1, 5),
			choiceQuestionDTO(2, 5),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 10.0, resp.TotalMarks)
	assert.Equal(t, 5.0, resp.PassingMarks)
	assert.Len(t, resp.Questions, 2)
}

func TestCreateAssessment_DuplicateDisplayOrder(t *testing.T) {
	svc := NewAdminAssessmentService(newFakeAssessmentRepo())

	_, err := svc.CreateAssessment(context.Background(), dto.AssessmentCreateDTO{
		Title:           "Broken",
		DurationMinutes: 60,
		Questions: []dto.QuestionCreateDTO{
			choiceQuestionDTO(1, 5),
			choiceQuestionDTO(1, 5),
		},
	})
	assert.Error(t, err)
}

func TestCreateAssessment_ChoiceQuestionNeedsKey(t *testing.T) {
	svc := NewAdminAssessmentService(newFakeAssessmentRepo())

	q := choiceQuestionDTO(1, 5)
	q.CorrectOption = nil
	_, err := svc.CreateAssessment(context.Background(), dto.AssessmentCreateDTO{
		Title:           "Broken",
		DurationMinutes: 60,
		Questions:       []dto.QuestionCreateDTO{q},
	})
	assert.Error(t, err)
}

func TestCreateAssessment_TextQuestionNeedsKey(t *testing.T) {
	svc := NewAdminAssessmentService(newFakeAssessmentRepo())

	_, err := svc.CreateAssessment(context.Background(), dto.AssessmentCreateDTO{
		Title:           "Broken",
		DurationMinutes: 60,
		Questions: []dto.QuestionCreateDTO{
			{Prompt: "Capital of France?", Type: "text", Marks: 5, DisplayOrder: 1},
		},
	})
	assert.Error(t, err)
}

func TestCreateAssessment_PassingMarksExceedTotal(t *testing.T) {
	svc := NewAdminAssessmentService(newFakeAssessmentRepo())

	_, err := svc.CreateAssessment(context.Background(), dto.AssessmentCreateDTO{
		Title:           "Broken",
		DurationMinutes: 60,
		PassingMarks:    50,
		Questions:       []dto.QuestionCreateDTO{choiceQuestionDTO(1, 5)},
	})
	assert.Error(t, err)
}
