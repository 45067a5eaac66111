package service

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/prateek8318/RankUpAPI-sub001/internal/dto"
	"github.com/prateek8318/RankUpAPI-sub001/internal/model"
	"github.com/prateek8318/RankUpAPI-sub001/internal/repository"
	"github.com/rs/zerolog/log"
)

type AdminAssessmentService interface {
	CreateAssessment(ctx context.Context, req dto.AssessmentCreateDTO) (*dto.AssessmentResponseDTO, error)
}

type adminAssessmentService struct {
	assessmentRepo repository.AssessmentRepository
}

func NewAdminAssessmentService(assessmentRepo repository.AssessmentRepository) AdminAssessmentService {
	return &adminAssessmentService{assessmentRepo: assessmentRepo}
}

func (s *adminAssessmentService) CreateAssessment(ctx context.Context, req dto.AssessmentCreateDTO) (*dto.AssessmentResponseDTO, error) {
	orderSeen := make(map[int]bool)
	totalMarks := 0.0
	questions := make([]model.AssessmentQuestion, 0, len(req.Questions))

	for _, qDto := range req.Questions {
		if orderSeen[qDto.DisplayOrder] {
			return nil, fmt.Errorf("duplicate display_order %d in questions", qDto.DisplayOrder)
		}
		orderSeen[qDto.DisplayOrder] = true

		switch qDto.Type {
		case model.QuestionTypeSingleChoice:
			if qDto.CorrectOption == nil || *qDto.CorrectOption == "" {
				return nil, fmt.Errorf("question at display_order %d of type 'single_choice' requires correct_option", qDto.DisplayOrder)
			}
			if qDto.OptionA == nil || qDto.OptionB == nil {
				return nil, fmt.Errorf("question at display_order %d of type 'single_choice' requires at least options A and B", qDto.DisplayOrder)
			}
		case model.QuestionTypeText:
			if qDto.CorrectText == nil || *qDto.CorrectText == "" {
				return nil, fmt.Errorf("question at display_order %d of type 'text' requires correct_text", qDto.DisplayOrder)
			}
		}

		var questionModel model.Question
		if err := copier.Copy(&questionModel, &qDto); err != nil {
			return nil, fmt.Errorf("error mapping question at display_order %d: %w", qDto.DisplayOrder, err)
		}

		questions = append(questions, model.AssessmentQuestion{
			Question:     questionModel,
			Marks:        qDto.Marks,
			DisplayOrder: qDto.DisplayOrder,
		})
		totalMarks += qDto.Marks
	}

	if req.PassingMarks > totalMarks {
		return nil, fmt.Errorf("passing_marks %.1f exceeds total marks %.1f", req.PassingMarks, totalMarks)
	}

	assessmentModel := model.Assessment{
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		TotalMarks:      totalMarks,
		PassingMarks:    req.PassingMarks,
		Questions:       questions,
	}

	if err := s.assessmentRepo.Create(ctx, &assessmentModel); err != nil {
		log.Error().Err(err).Msg("Failed to create assessment in database")
		return nil, fmt.Errorf("database error creating assessment: %w", err)
	}

	created, err := s.assessmentRepo.FindByIDWithQuestions(ctx, assessmentModel.ID)
	if err != nil {
		log.Error().Err(err).Uint("assessmentID", assessmentModel.ID).Msg("Failed to reload newly created assessment for response")
		var fallbackResp dto.AssessmentResponseDTO
		if err := copier.Copy(&fallbackResp, &assessmentModel); err != nil {
			log.Error().Err(err).Msg("Failed to copy assessment model to fallback response")
			return nil, fmt.Errorf("error preparing response data: %w", err)
		}
		return &fallbackResp, nil
	}

	var resp dto.AssessmentResponseDTO
	if err := copier.Copy(&resp, created); err != nil {
		log.Error().Err(err).Msg("Failed to copy created assessment to response DTO")
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}
	return &resp, nil
}
