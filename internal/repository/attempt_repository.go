package repository

import (
	"context"
	"errors"

	"github.com/prateek8318/RankUpAPI-sub001/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(ctx context.Context, attempt *model.Attempt) error
	FindByID(ctx context.Context, id uint) (*model.Attempt, error)
	FindByIDWithAnswers(ctx context.Context, id uint) (*model.Attempt, error)
	FindActiveByUserAndAssessment(ctx context.Context, userID, assessmentID uint) (*model.Attempt, error)
	FindAllByUserAndAssessment(ctx context.Context, userID, assessmentID uint) ([]model.Attempt, error)
	FindActiveWithAssessment(ctx context.Context, limit int) ([]model.Attempt, error)
	UpdateVersioned(ctx context.Context, attempt *model.Attempt) error
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	// The partial unique index uniq_active_attempt makes concurrent starts for
	// the same (user, assessment) fail here with gorm.ErrDuplicatedKey; the
	// service maps that to a conflict.
	return withRetry(func() error {
		return r.db.WithContext(ctx).Create(attempt).Error
	})
}

func (r *attemptRepository) FindByID(ctx context.Context, id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByIDWithAnswers(ctx context.Context, id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Preload("Answers").
		Preload("Answers.Question").
		First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindActiveByUserAndAssessment(ctx context.Context, userID, assessmentID uint) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND assessment_id = ? AND status IN ?",
			userID, assessmentID, []model.AttemptStatus{model.AttemptInProgress, model.AttemptPaused}).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindAllByUserAndAssessment(ctx context.Context, userID, assessmentID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		Order("started_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// FindActiveWithAssessment feeds the expiry sweeper: active attempts with
// their assessment preloaded so the deadline can be computed without N extra
// queries.
func (r *attemptRepository) FindActiveWithAssessment(ctx context.Context, limit int) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.WithContext(ctx).
		Preload("Assessment").
		Where("status IN ?", []model.AttemptStatus{model.AttemptInProgress, model.AttemptPaused}).
		Order("started_at ASC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

// UpdateVersioned persists the attempt's mutable columns guarded by its
// optimistic-concurrency token. Returns ErrStaleVersion when another writer
// got there first; the caller re-reads and re-applies.
func (r *attemptRepository) UpdateVersioned(ctx context.Context, attempt *model.Attempt) error {
	err := withRetry(func() error {
		res := r.db.WithContext(ctx).Model(&model.Attempt{}).
			Where("id = ? AND version = ?", attempt.ID, attempt.Version).
			Updates(map[string]any{
				"status":                 attempt.Status,
				"completed_at":           attempt.CompletedAt,
				"last_pause_at":          attempt.LastPauseAt,
				"total_pause_seconds":    attempt.TotalPauseSeconds,
				"current_question_index": attempt.CurrentQuestionIndex,
				"score":                  attempt.Score,
				"accuracy":               attempt.Accuracy,
				"passed":                 attempt.Passed,
				"version":                attempt.Version + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleVersion
		}
		return nil
	})
	if err != nil {
		return err
	}
	attempt.Version++
	return nil
}

// IsNotFound reports whether err is the repository's record-not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
