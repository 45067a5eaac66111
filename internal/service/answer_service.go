package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/prateek8318/RankUpAPI-sub001/internal/apperr"
	"github.com/prateek8318/RankUpAPI-sub001/internal/dto"
	"github.com/prateek8318/RankUpAPI-sub001/internal/model"
	"github.com/prateek8318/RankUpAPI-sub001/internal/repository"
	"github.com/rs/zerolog/log"
)

// AnswerService is the attempt's answer ledger: one record per question,
// upsert semantics, writes guarded by the time governor.
type AnswerService interface {
	RecordAnswer(ctx context.Context, attemptID uint, req dto.RecordAnswerRequest) (*dto.AnswerRecordDTO, error)
	GetAnswers(ctx context.Context, attemptID uint) ([]dto.AnswerRecordDTO, error)
}

type answerService struct {
	attemptRepo    repository.AttemptRepository
	assessmentRepo repository.AssessmentRepository
	answerRepo     repository.AnswerRepository
	attempts       AttemptService
	governor       *TimeGovernor
	clock          Clock
}

func NewAnswerService(
	attemptRepo repository.AttemptRepository,
	assessmentRepo repository.AssessmentRepository,
	answerRepo repository.AnswerRepository,
	attempts AttemptService,
	governor *TimeGovernor,
	clock Clock,
) AnswerService {
	return &answerService{
		attemptRepo:    attemptRepo,
		assessmentRepo: assessmentRepo,
		answerRepo:     answerRepo,
		attempts:       attempts,
		governor:       governor,
		clock:          clock,
	}
}

// RecordAnswer upserts the answer for (attempt, question). Overwriting a
// prior answer is the user changing their mind, not an error. A write that
// arrives after expiry expires the attempt and is rejected rather than
// silently accepted. The write is guarded by the attempt's version token, so
// a pause, submit or expiry landing between the state check and the upsert
// fails the write instead of leaving an answer on a terminal attempt; the
// loop then re-reads and re-decides.
func (s *answerService) RecordAnswer(ctx context.Context, attemptID uint, req dto.RecordAnswerRequest) (*dto.AnswerRecordDTO, error) {
	var record model.AnswerRecord
	for try := 0; ; try++ {
		attempt, err := s.attemptRepo.FindByID(ctx, attemptID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, apperr.NotFoundf("attempt %d", attemptID)
			}
			return nil, fmt.Errorf("failed to load attempt %d: %w", attemptID, err)
		}
		if attempt.Status != model.AttemptInProgress {
			return nil, apperr.InvalidStatef("cannot record answer on attempt %d in status %s", attempt.ID, attempt.Status)
		}

		assessment, err := s.assessmentRepo.FindByIDWithQuestions(ctx, attempt.AssessmentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load assessment %d: %w", attempt.AssessmentID, err)
		}

		if s.governor.IsExpired(attempt, assessment) {
			if _, err := s.attempts.ExpireIfOverdue(ctx, attemptID); err != nil {
				log.Error().Err(err).Uint("attemptID", attemptID).Msg("Failed to expire overdue attempt on late answer")
			}
			return nil, apperr.Expiredf("attempt %d ran out of time, answer rejected", attemptID)
		}

		question, err := questionInAssessment(assessment, req.QuestionID)
		if err != nil {
			return nil, err
		}
		if err := validateAnswerShape(question, req); err != nil {
			return nil, err
		}

		record = model.AnswerRecord{
			AttemptID:        attempt.ID,
			QuestionID:       question.ID,
			SelectedOption:   req.SelectedOption,
			TextAnswer:       req.TextAnswer,
			MarkedForReview:  req.MarkedForReview,
			Skipped:          req.Skipped,
			AnsweredAt:       s.clock.Now(),
			TimeSpentSeconds: req.TimeSpentSeconds,
		}
		err = s.answerRepo.Upsert(ctx, attempt, &record)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrStaleVersion) {
			return nil, fmt.Errorf("failed to record answer for attempt %d question %d: %w", attempt.ID, question.ID, err)
		}
		if try+1 >= mutateRetries {
			return nil, apperr.Transientf("attempt %d kept losing update races", attemptID)
		}
		log.Warn().Uint("attemptID", attemptID).Int("try", try+1).Msg("Answer write lost an attempt race, retrying")
		time.Sleep(time.Duration(10*(try+1)) * time.Millisecond)
	}

	if req.QuestionIndex != nil {
		// Progress is a convenience marker; losing it to a race is harmless.
		if err := s.attempts.UpdateProgress(ctx, attemptID, *req.QuestionIndex); err != nil {
			log.Warn().Err(err).Uint("attemptID", attemptID).Msg("Failed to persist question index")
		}
	}

	log.Info().Uint("attemptID", record.AttemptID).Uint("questionID", record.QuestionID).Msg("Answer recorded")

	var resp dto.AnswerRecordDTO
	if err := copier.Copy(&resp, &record); err != nil {
		return nil, fmt.Errorf("error preparing answer response: %w", err)
	}
	return &resp, nil
}

// GetAnswers returns the attempt's current answers, keyed for the resume
// flow to redisplay and for the result screen.
func (s *answerService) GetAnswers(ctx context.Context, attemptID uint) ([]dto.AnswerRecordDTO, error) {
	if _, err := s.attemptRepo.FindByID(ctx, attemptID); err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFoundf("attempt %d", attemptID)
		}
		return nil, fmt.Errorf("failed to load attempt %d: %w", attemptID, err)
	}

	records, err := s.answerRepo.FindByAttemptID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers for attempt %d: %w", attemptID, err)
	}

	answers := make([]dto.AnswerRecordDTO, 0, len(records))
	for _, record := range records {
		var item dto.AnswerRecordDTO
		if err := copier.Copy(&item, &record); err != nil {
			log.Error().Err(err).Uint("answerID", record.ID).Msg("Failed to copy answer record to DTO")
			continue
		}
		answers = append(answers, item)
	}
	return answers, nil
}

func questionInAssessment(assessment *model.Assessment, questionID uint) (*model.Question, error) {
	for i := range assessment.Questions {
		if assessment.Questions[i].QuestionID == questionID {
			return &assessment.Questions[i].Question, nil
		}
	}
	return nil, apperr.NotFoundf("question %d is not part of assessment %d", questionID, assessment.ID)
}

func validateAnswerShape(question *model.Question, req dto.RecordAnswerRequest) error {
	if req.Skipped {
		return nil
	}
	switch question.Type {
	case model.QuestionTypeSingleChoice:
		if req.SelectedOption == nil && req.TextAnswer != nil {
			return apperr.InvalidStatef("question %d takes a selected option, not a text answer", question.ID)
		}
	case model.QuestionTypeText:
		if req.TextAnswer == nil && req.SelectedOption != nil {
			return apperr.InvalidStatef("question %d takes a text answer, not a selected option", question.ID)
		}
	}
	return nil
}
