package service

import (
	"fmt"
	"strings"

	"github.com/prateek8318/RankUpAPI-sub001/internal/model"
)

// QuestionScore is the per-question outcome of scoring one attempt.
type QuestionScore struct {
	QuestionID    uint
	AnswerID      uint // 0 when the question was never answered
	DisplayOrder  int
	Marks         float64
	UserAnswer    string
	CorrectAnswer string
	Answered      bool
	IsCorrect     bool
	MarksAwarded  float64
}

// ScoreOutcome aggregates the result of evaluating every assessment question
// against the recorded answers. Computed once at submission or expiry and
// immutable afterward.
type ScoreOutcome struct {
	Score          float64
	Accuracy       float64
	Passed         bool
	TotalQuestions int
	CorrectCount   int
	AnsweredCount  int
	Questions      []QuestionScore
}

// ScoringService evaluates recorded answers against the assessment's answer
// keys. Deterministic and side-effect-free given its inputs; persistence of
// the outcome belongs to the caller.
type ScoringService interface {
	Score(assessment *model.Assessment, answers map[uint]model.AnswerRecord) (*ScoreOutcome, error)
}

type scoringService struct{}

func NewScoringService() ScoringService {
	return &scoringService{}
}

func (s *scoringService) Score(assessment *model.Assessment, answers map[uint]model.AnswerRecord) (*ScoreOutcome, error) {
	if len(assessment.Questions) == 0 {
		return nil, fmt.Errorf("assessment %d has no questions, cannot score", assessment.ID)
	}

	outcome := &ScoreOutcome{
		TotalQuestions: len(assessment.Questions),
		Questions:      make([]QuestionScore, 0, len(assessment.Questions)),
	}

	for _, aq := range assessment.Questions {
		question := aq.Question
		if question.ID == 0 {
			// The question set is owned by the catalog; a dangling reference is
			// a data-integrity bug, not something to default a score over.
			return nil, fmt.Errorf("assessment %d references question %d with no question data", assessment.ID, aq.QuestionID)
		}

		qs := QuestionScore{
			QuestionID:   aq.QuestionID,
			DisplayOrder: aq.DisplayOrder,
			Marks:        aq.Marks,
		}

		correct, err := correctAnswerKey(&question)
		if err != nil {
			return nil, fmt.Errorf("assessment %d: %w", assessment.ID, err)
		}
		qs.CorrectAnswer = correct

		answer, ok := answers[aq.QuestionID]
		if ok && !answer.Skipped {
			qs.AnswerID = answer.ID
			qs.UserAnswer = userAnswerValue(&question, &answer)
			qs.Answered = qs.UserAnswer != ""
		}

		// Unanswered questions score zero; they are not an error, but they do
		// count against accuracy since the denominator is the full question set.
		if qs.Answered {
			outcome.AnsweredCount++
			qs.IsCorrect = answersMatch(question.Type, qs.UserAnswer, correct)
			if qs.IsCorrect {
				qs.MarksAwarded = aq.Marks
				outcome.CorrectCount++
				outcome.Score += aq.Marks
			}
		}

		outcome.Questions = append(outcome.Questions, qs)
	}

	outcome.Accuracy = float64(outcome.CorrectCount) / float64(outcome.TotalQuestions) * 100
	outcome.Passed = outcome.Score >= assessment.PassingMarks
	return outcome, nil
}

func correctAnswerKey(q *model.Question) (string, error) {
	switch q.Type {
	case model.QuestionTypeSingleChoice:
		if q.CorrectOption == nil || *q.CorrectOption == "" {
			return "", fmt.Errorf("question %d has no correct option key", q.ID)
		}
		return *q.CorrectOption, nil
	case model.QuestionTypeText:
		if q.CorrectText == nil || *q.CorrectText == "" {
			return "", fmt.Errorf("question %d has no correct text key", q.ID)
		}
		return *q.CorrectText, nil
	default:
		return "", fmt.Errorf("question %d has unknown type %q", q.ID, q.Type)
	}
}

func userAnswerValue(q *model.Question, a *model.AnswerRecord) string {
	if q.Type == model.QuestionTypeSingleChoice {
		if a.SelectedOption == nil {
			return ""
		}
		return *a.SelectedOption
	}
	if a.TextAnswer == nil {
		return ""
	}
	return *a.TextAnswer
}

// answersMatch compares a recorded answer against the key. Single-select is
// an exact option match; text answers compare trimmed and case-insensitive.
func answersMatch(questionType, user, correct string) bool {
	if questionType == model.QuestionTypeText {
		return strings.EqualFold(strings.TrimSpace(user), strings.TrimSpace(correct))
	}
	return strings.EqualFold(user, correct)
}
