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

// AttemptService owns the attempt lifecycle: InProgress ⇄ Paused,
// InProgress → Completed, InProgress|Paused → Expired|Abandoned. Terminal
// states are never left. At most one InProgress or Paused attempt may exist
// per (user, assessment).
type AttemptService interface {
	Start(ctx context.Context, assessmentID, userID uint) (*dto.AttemptResponseDTO, error)
	Pause(ctx context.Context, attemptID uint) (*dto.AttemptResponseDTO, error)
	Resume(ctx context.Context, attemptID uint) (*dto.AttemptResponseDTO, error)
	Abandon(ctx context.Context, attemptID uint) (*dto.AttemptResponseDTO, error)
	Complete(ctx context.Context, attemptID uint) (*dto.AttemptResultDTO, error)
	ExpireIfOverdue(ctx context.Context, attemptID uint) (bool, error)
	Status(ctx context.Context, attemptID uint) (*dto.AttemptResponseDTO, error)
	UpdateProgress(ctx context.Context, attemptID uint, questionIndex int) error
	Result(ctx context.Context, attemptID uint) (*dto.AttemptResultDTO, error)
	ListForUser(ctx context.Context, assessmentID, userID uint) ([]dto.AttemptSummaryDTO, error)
}

type attemptService struct {
	attemptRepo    repository.AttemptRepository
	assessmentRepo repository.AssessmentRepository
	answerRepo     repository.AnswerRepository
	scoring        ScoringService
	governor       *TimeGovernor
	clock          Clock
}

func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	assessmentRepo repository.AssessmentRepository,
	answerRepo repository.AnswerRepository,
	scoring ScoringService,
	governor *TimeGovernor,
	clock Clock,
) AttemptService {
	return &attemptService{
		attemptRepo:    attemptRepo,
		assessmentRepo: assessmentRepo,
		answerRepo:     answerRepo,
		scoring:        scoring,
		governor:       governor,
		clock:          clock,
	}
}

func (s *attemptService) Start(ctx context.Context, assessmentID, userID uint) (*dto.AttemptResponseDTO, error) {
	assessment, err := s.assessmentRepo.FindByID(ctx, assessmentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFoundf("assessment %d", assessmentID)
		}
		return nil, fmt.Errorf("failed to load assessment %d: %w", assessmentID, err)
	}

	// Friendly pre-check. The race between this check and the insert is closed
	// by the partial unique index on active attempts, not by this lookup.
	if existing, err := s.attemptRepo.FindActiveByUserAndAssessment(ctx, userID, assessmentID); err == nil {
		return nil, apperr.Conflictf("user %d already has attempt %d active for assessment %d", userID, existing.ID, assessmentID)
	} else if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check active attempts: %w", err)
	}

	attempt := model.Attempt{
		UserID:       userID,
		AssessmentID: assessmentID,
		Status:       model.AttemptInProgress,
		StartedAt:    s.clock.Now(),
		TotalMarks:   assessment.TotalMarks,
		Version:      1,
	}
	if err := s.attemptRepo.Create(ctx, &attempt); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperr.Conflictf("user %d already has an active attempt for assessment %d", userID, assessmentID)
		}
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	log.Info().Uint("attemptID", attempt.ID).Uint("userID", userID).Uint("assessmentID", assessmentID).Msg("Attempt started")
	return s.toResponse(&attempt, assessment), nil
}

func (s *attemptService) Pause(ctx context.Context, attemptID uint) (*dto.AttemptResponseDTO, error) {
	attempt, err := s.mutate(ctx, attemptID, func(a *model.Attempt) error {
		if a.Status != model.AttemptInProgress {
			return apperr.InvalidStatef("cannot pause attempt %d in status %s", a.ID, a.Status)
		}
		now := s.clock.Now()
		a.Status = model.AttemptPaused
		a.LastPauseAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("attemptID", attemptID).Msg("Attempt paused")
	return s.respond(ctx, attempt)
}

func (s *attemptService) Resume(ctx context.Context, attemptID uint) (*dto.AttemptResponseDTO, error) {
	attempt, err := s.mutate(ctx, attemptID, func(a *model.Attempt) error {
		if a.Status != model.AttemptPaused {
			return apperr.InvalidStatef("cannot resume attempt %d in status %s", a.ID, a.Status)
		}
		now := s.clock.Now()
		if a.LastPauseAt != nil {
			if paused := int(now.Sub(*a.LastPauseAt).Seconds()); paused > 0 {
				a.TotalPauseSeconds += paused
			}
		}
		a.LastPauseAt = nil
		a.Status = model.AttemptInProgress
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("attemptID", attemptID).Int("totalPauseSeconds", attempt.TotalPauseSeconds).Msg("Attempt resumed")
	return s.respond(ctx, attempt)
}

func (s *attemptService) Abandon(ctx context.Context, attemptID uint) (*dto.AttemptResponseDTO, error) {
	attempt, err := s.mutate(ctx, attemptID, func(a *model.Attempt) error {
		if !a.Status.IsActive() {
			return apperr.InvalidStatef("cannot abandon attempt %d in status %s", a.ID, a.Status)
		}
		// No scoring and no CompletedAt: abandoned attempts are walked away
		// from, not finished.
		a.Status = model.AttemptAbandoned
		a.LastPauseAt = nil
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Uint("attemptID", attemptID).Msg("Attempt abandoned")
	return s.respond(ctx, attempt)
}

// Complete is the explicit user submission. Only an InProgress attempt may be
// submitted; a paused attempt must be resumed first. If the clock ran out
// before the submission arrived, the attempt is expired instead and the
// caller is redirected to the result flow via ErrExpired.
func (s *attemptService) Complete(ctx context.Context, attemptID uint) (*dto.AttemptResultDTO, error) {
	var result *dto.AttemptResultDTO
	errOverdue := errors.New("overdue")

	_, err := s.mutate(ctx, attemptID, func(a *model.Attempt) error {
		if a.Status != model.AttemptInProgress {
			return apperr.InvalidStatef("cannot submit attempt %d in status %s", a.ID, a.Status)
		}
		assessment, err := s.assessmentRepo.FindByIDWithQuestions(ctx, a.AssessmentID)
		if err != nil {
			return fmt.Errorf("failed to load assessment %d: %w", a.AssessmentID, err)
		}
		if s.governor.IsExpired(a, assessment) {
			return errOverdue
		}
		outcome, err := s.finalize(ctx, a, assessment, model.AttemptCompleted)
		if err != nil {
			return err
		}
		result = s.toResult(a, assessment, outcome)
		return nil
	})
	if err != nil {
		if errors.Is(err, errOverdue) {
			if _, expErr := s.ExpireIfOverdue(ctx, attemptID); expErr != nil {
				log.Error().Err(expErr).Uint("attemptID", attemptID).Msg("Failed to expire overdue attempt during submit")
			}
			return nil, apperr.Expiredf("attempt %d ran out of time before submission", attemptID)
		}
		return nil, err
	}

	log.Info().Uint("attemptID", attemptID).Float64("score", result.Score).Bool("passed", result.Passed).Msg("Attempt completed")
	return result, nil
}

// ExpireIfOverdue transitions an overdue active attempt to Expired and scores
// whatever answers exist. Idempotent: a terminal attempt is a no-op returning
// false, so a second sweep or a racing request cannot double-score.
func (s *attemptService) ExpireIfOverdue(ctx context.Context, attemptID uint) (bool, error) {
	expired := false
	errNoop := errors.New("noop")

	_, err := s.mutate(ctx, attemptID, func(a *model.Attempt) error {
		if a.Status.IsTerminal() {
			return errNoop
		}
		assessment, err := s.assessmentRepo.FindByIDWithQuestions(ctx, a.AssessmentID)
		if err != nil {
			return fmt.Errorf("failed to load assessment %d: %w", a.AssessmentID, err)
		}
		if !s.governor.IsExpired(a, assessment) {
			return errNoop
		}
		if _, err := s.finalize(ctx, a, assessment, model.AttemptExpired); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errNoop) {
			return false, nil
		}
		return false, err
	}

	expired = true
	log.Info().Uint("attemptID", attemptID).Msg("Attempt expired")
	return expired, nil
}

func (s *attemptService) Status(ctx context.Context, attemptID uint) (*dto.AttemptResponseDTO, error) {
	attempt, err := s.findAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, attempt)
}

// UpdateProgress persists the test player's current question marker. Only
// meaningful while the attempt is running.
func (s *attemptService) UpdateProgress(ctx context.Context, attemptID uint, questionIndex int) error {
	_, err := s.mutate(ctx, attemptID, func(a *model.Attempt) error {
		if a.Status != model.AttemptInProgress {
			return apperr.InvalidStatef("cannot update progress of attempt %d in status %s", a.ID, a.Status)
		}
		a.CurrentQuestionIndex = questionIndex
		return nil
	})
	return err
}

// Result rebuilds the score report of a scored attempt from the persisted
// per-answer correctness; it never re-scores.
func (s *attemptService) Result(ctx context.Context, attemptID uint) (*dto.AttemptResultDTO, error) {
	attempt, err := s.attemptRepo.FindByIDWithAnswers(ctx, attemptID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFoundf("attempt %d", attemptID)
		}
		return nil, fmt.Errorf("failed to load attempt %d: %w", attemptID, err)
	}
	if attempt.Status != model.AttemptCompleted && attempt.Status != model.AttemptExpired {
		return nil, apperr.InvalidStatef("attempt %d has no result in status %s", attempt.ID, attempt.Status)
	}

	assessment, err := s.assessmentRepo.FindByIDWithQuestions(ctx, attempt.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment %d: %w", attempt.AssessmentID, err)
	}

	byQuestion := make(map[uint]model.AnswerRecord, len(attempt.Answers))
	for _, answer := range attempt.Answers {
		byQuestion[answer.QuestionID] = answer
	}

	result := &dto.AttemptResultDTO{
		AttemptID:       attempt.ID,
		AssessmentID:    assessment.ID,
		AssessmentTitle: assessment.Title,
		Status:          string(attempt.Status),
		TotalMarks:      assessment.TotalMarks,
		PassingMarks:    assessment.PassingMarks,
		TotalQuestions:  len(assessment.Questions),
		CompletedAt:     attempt.CompletedAt,
	}
	if attempt.Score != nil {
		result.Score = *attempt.Score
	}
	if attempt.Accuracy != nil {
		result.Accuracy = *attempt.Accuracy
	}
	if attempt.Passed != nil {
		result.Passed = *attempt.Passed
	}

	for _, aq := range assessment.Questions {
		line := dto.QuestionResultDTO{
			QuestionID:   aq.QuestionID,
			DisplayOrder: aq.DisplayOrder,
			Marks:        aq.Marks,
		}
		if key, err := correctAnswerKey(&aq.Question); err == nil {
			line.CorrectAnswer = key
		}
		if answer, ok := byQuestion[aq.QuestionID]; ok && !answer.Skipped {
			line.UserAnswer = userAnswerValue(&aq.Question, &answer)
			line.Answered = line.UserAnswer != ""
			if answer.IsCorrect != nil {
				line.IsCorrect = *answer.IsCorrect
			}
			line.MarksAwarded = answer.MarksAwarded
			if line.IsCorrect {
				result.CorrectCount++
			}
		}
		result.Questions = append(result.Questions, line)
	}

	return result, nil
}

func (s *attemptService) ListForUser(ctx context.Context, assessmentID, userID uint) ([]dto.AttemptSummaryDTO, error) {
	attempts, err := s.attemptRepo.FindAllByUserAndAssessment(ctx, userID, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts for user %d assessment %d: %w", userID, assessmentID, err)
	}

	summaries := make([]dto.AttemptSummaryDTO, 0, len(attempts))
	for _, attempt := range attempts {
		var summary dto.AttemptSummaryDTO
		if err := copier.Copy(&summary, &attempt); err != nil {
			log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Failed to copy attempt to summary DTO")
			continue
		}
		summary.Status = string(attempt.Status)
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

const mutateRetries = 3

// mutate serializes writers on a single attempt: load, apply, conditional
// update on the version token, re-read and re-apply on a lost race. Cross
// attempt operations never contend with each other here.
func (s *attemptService) mutate(ctx context.Context, attemptID uint, apply func(*model.Attempt) error) (*model.Attempt, error) {
	for i := 0; i < mutateRetries; i++ {
		attempt, err := s.findAttempt(ctx, attemptID)
		if err != nil {
			return nil, err
		}
		if err := apply(attempt); err != nil {
			return nil, err
		}
		err = s.attemptRepo.UpdateVersioned(ctx, attempt)
		if err == nil {
			return attempt, nil
		}
		if !errors.Is(err, repository.ErrStaleVersion) {
			return nil, fmt.Errorf("failed to update attempt %d: %w", attemptID, err)
		}
		log.Warn().Uint("attemptID", attemptID).Int("try", i+1).Msg("Attempt version conflict, retrying")
		time.Sleep(time.Duration(10*(i+1)) * time.Millisecond)
	}
	return nil, apperr.Transientf("attempt %d kept losing update races", attemptID)
}

// finalize scores the attempt's answers and moves it to the given terminal
// state. The caller persists the attempt row via mutate; per-answer
// correctness is written here.
func (s *attemptService) finalize(ctx context.Context, attempt *model.Attempt, assessment *model.Assessment, status model.AttemptStatus) (*ScoreOutcome, error) {
	records, err := s.answerRepo.FindByAttemptID(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers for attempt %d: %w", attempt.ID, err)
	}
	byQuestion := make(map[uint]model.AnswerRecord, len(records))
	for _, record := range records {
		byQuestion[record.QuestionID] = record
	}

	outcome, err := s.scoring.Score(assessment, byQuestion)
	if err != nil {
		return nil, fmt.Errorf("scoring attempt %d: %w", attempt.ID, err)
	}

	now := s.clock.Now()
	attempt.Status = status
	attempt.CompletedAt = &now
	attempt.LastPauseAt = nil
	attempt.Score = &outcome.Score
	attempt.Accuracy = &outcome.Accuracy
	attempt.Passed = &outcome.Passed

	scored := make([]model.AnswerRecord, 0, len(outcome.Questions))
	for _, qs := range outcome.Questions {
		if qs.AnswerID == 0 {
			continue
		}
		isCorrect := qs.IsCorrect
		scored = append(scored, model.AnswerRecord{
			ID:           qs.AnswerID,
			IsCorrect:    &isCorrect,
			MarksAwarded: qs.MarksAwarded,
		})
	}
	// Score rows land before the attempt row's versioned update. If that
	// update loses its race, mutate re-runs finalize and these writes are
	// overwritten idempotently; they are only observable once the attempt
	// row reaches its terminal state.
	if err := s.answerRepo.UpdateScores(ctx, scored); err != nil {
		return nil, fmt.Errorf("failed to persist answer scores for attempt %d: %w", attempt.ID, err)
	}

	return outcome, nil
}

func (s *attemptService) findAttempt(ctx context.Context, attemptID uint) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.FindByID(ctx, attemptID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFoundf("attempt %d", attemptID)
		}
		return nil, fmt.Errorf("failed to load attempt %d: %w", attemptID, err)
	}
	return attempt, nil
}

// respond builds the snapshot DTO, loading the assessment for the remaining
// time computation.
func (s *attemptService) respond(ctx context.Context, attempt *model.Attempt) (*dto.AttemptResponseDTO, error) {
	assessment, err := s.assessmentRepo.FindByID(ctx, attempt.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment %d: %w", attempt.AssessmentID, err)
	}
	return s.toResponse(attempt, assessment), nil
}

func (s *attemptService) toResponse(attempt *model.Attempt, assessment *model.Assessment) *dto.AttemptResponseDTO {
	var resp dto.AttemptResponseDTO
	if err := copier.Copy(&resp, attempt); err != nil {
		log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("Failed to copy attempt to response DTO")
	}
	resp.Status = string(attempt.Status)
	if attempt.Status.IsActive() {
		resp.RemainingSeconds = s.governor.RemainingSeconds(attempt, assessment)
	}
	return &resp
}

func (s *attemptService) toResult(attempt *model.Attempt, assessment *model.Assessment, outcome *ScoreOutcome) *dto.AttemptResultDTO {
	result := &dto.AttemptResultDTO{
		AttemptID:       attempt.ID,
		AssessmentID:    assessment.ID,
		AssessmentTitle: assessment.Title,
		Status:          string(attempt.Status),
		Score:           outcome.Score,
		Accuracy:        outcome.Accuracy,
		Passed:          outcome.Passed,
		TotalMarks:      assessment.TotalMarks,
		PassingMarks:    assessment.PassingMarks,
		CorrectCount:    outcome.CorrectCount,
		TotalQuestions:  outcome.TotalQuestions,
		CompletedAt:     attempt.CompletedAt,
	}
	for _, qs := range outcome.Questions {
		result.Questions = append(result.Questions, dto.QuestionResultDTO{
			QuestionID:    qs.QuestionID,
			DisplayOrder:  qs.DisplayOrder,
			Marks:         qs.Marks,
			UserAnswer:    qs.UserAnswer,
			CorrectAnswer: qs.CorrectAnswer,
			Answered:      qs.Answered,
			IsCorrect:     qs.IsCorrect,
			MarksAwarded:  qs.MarksAwarded,
		})
	}
	return result
}
