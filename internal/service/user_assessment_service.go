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

type UserAssessmentService interface {
	GetAllAssessments(ctx context.Context) ([]dto.AssessmentSummaryDTO, error)
	GetAssessmentDetails(ctx context.Context, assessmentID uint) (*dto.AssessmentResponseDTO, error)
}

type userAssessmentService struct {
	assessmentRepo repository.AssessmentRepository
}

func NewUserAssessmentService(assessmentRepo repository.AssessmentRepository) UserAssessmentService {
	return &userAssessmentService{assessmentRepo: assessmentRepo}
}

func (s *userAssessmentService) GetAllAssessments(ctx context.Context) ([]dto.AssessmentSummaryDTO, error) {
	withCount, err := s.assessmentRepo.FindAllWithQuestionCount(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list assessments with question count")
		return nil, fmt.Errorf("error fetching assessments: %w", err)
	}

	summaries := make([]dto.AssessmentSummaryDTO, 0, len(withCount))
	for _, awc := range withCount {
		summaries = append(summaries, dto.AssessmentSummaryDTO{
			ID:              awc.Assessment.ID,
			Title:           awc.Assessment.Title,
			Description:     awc.Assessment.Description,
			DurationMinutes: awc.Assessment.DurationMinutes,
			TotalMarks:      awc.Assessment.TotalMarks,
			PassingMarks:    awc.Assessment.PassingMarks,
			QuestionCount:   awc.QuestionCount,
			CreatedAt:       awc.Assessment.CreatedAt,
		})
	}
	return summaries, nil
}

func (s *userAssessmentService) GetAssessmentDetails(ctx context.Context, assessmentID uint) (*dto.AssessmentResponseDTO, error) {
	assessment, err := s.assessmentRepo.FindByIDWithQuestions(ctx, assessmentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFoundf("assessment %d", assessmentID)
		}
		log.Error().Err(err).Uint("assessmentID", assessmentID).Msg("Failed to load assessment details")
		return nil, fmt.Errorf("error fetching assessment %d: %w", assessmentID, err)
	}

	var resp dto.AssessmentResponseDTO
	if err := copier.Copy(&resp, assessment); err != nil {
		log.Error().Err(err).Msg("Failed to copy assessment model to response DTO")
		return nil, fmt.Errorf("error preparing assessment details response: %w", err)
	}
	return &resp, nil
}
