package service

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/prateek8318/RankUpAPI-sub001/internal/apperr"
	"github.com/prateek8318/RankUpAPI-sub001/internal/dto"
	"github.com/prateek8318/RankUpAPI-sub001/internal/repository"
	"github.com/rs/zerolog/log"
)

// QuestionService is the admin question-bank surface. The attempt engine
// only ever reads questions through the assessment's question set.
type QuestionService interface {
	GetQuestion(ctx context.Context, id uint) (*dto.QuestionResponseDTO, error)
	UpdateQuestion(ctx context.Context, id uint, req dto.QuestionUpdateDTO) (*dto.QuestionResponseDTO, error)
	DeleteQuestion(ctx context.Context, id uint) error
}

type questionService struct {
	repo repository.QuestionRepository
}

func NewQuestionService(repo repository.QuestionRepository) QuestionService {
	return &questionService{repo: repo}
}

func (s *questionService) GetQuestion(ctx context.Context, id uint) (*dto.QuestionResponseDTO, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFoundf("question %d", id)
		}
		return nil, fmt.Errorf("failed to load question %d: %w", id, err)
	}
	var resp dto.QuestionResponseDTO
	if err := copier.Copy(&resp, question); err != nil {
		return nil, fmt.Errorf("error preparing question response: %w", err)
	}
	return &resp, nil
}

func (s *questionService) UpdateQuestion(ctx context.Context, id uint, req dto.QuestionUpdateDTO) (*dto.QuestionResponseDTO, error) {
	question, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFoundf("question %d", id)
		}
		return nil, fmt.Errorf("failed to load question %d: %w", id, err)
	}

	if req.Prompt != nil {
		question.Prompt = *req.Prompt
	}
	if req.OptionA != nil {
		question.OptionA = req.OptionA
	}
	if req.OptionB != nil {
		question.OptionB = req.OptionB
	}
	if req.OptionC != nil {
		question.OptionC = req.OptionC
	}
	if req.OptionD != nil {
		question.OptionD = req.OptionD
	}
	if req.CorrectOption != nil {
		question.CorrectOption = req.CorrectOption
	}
	if req.CorrectText != nil {
		question.CorrectText = req.CorrectText
	}
	if req.Explanation != nil {
		question.Explanation = req.Explanation
	}

	if err := s.repo.Update(ctx, question); err != nil {
		log.Error().Err(err).Uint("questionID", id).Msg("Failed to update question")
		return nil, fmt.Errorf("failed to update question %d: %w", id, err)
	}

	var resp dto.QuestionResponseDTO
	if err := copier.Copy(&resp, question); err != nil {
		return nil, fmt.Errorf("error preparing question response: %w", err)
	}
	return &resp, nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, id uint) error {
	// Soft delete; past attempts keep their answer records and scores.
	return s.repo.Delete(ctx, id)
}
