package repository

import (
	"context"

	"github.com/prateek8318/RankUpAPI-sub001/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository interface {
	Upsert(ctx context.Context, attempt *model.Attempt, answer *model.AnswerRecord) error
	FindByAttemptID(ctx context.Context, attemptID uint) ([]model.AnswerRecord, error)
	UpdateScores(ctx context.Context, answers []model.AnswerRecord) error
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

// Upsert writes the answer for (attempt, question); a second write for the
// same question overwrites the previous one, last write wins. The write and a
// bump of the attempt's version token happen in one transaction, conditional
// on the attempt still being in progress at that version — so a terminal
// transition racing this write fails it with ErrStaleVersion instead of
// letting the answer land on a completed or expired attempt, and a write that
// lands forces a racing finalization to re-read the ledger.
func (r *answerRepository) Upsert(ctx context.Context, attempt *model.Attempt, answer *model.AnswerRecord) error {
	err := withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&model.Attempt{}).
				Where("id = ? AND version = ? AND status = ?",
					attempt.ID, attempt.Version, model.AttemptInProgress).
				Update("version", attempt.Version+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStaleVersion
			}
			return tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"selected_option", "text_answer", "marked_for_review",
					"skipped", "answered_at", "time_spent_seconds", "updated_at",
				}),
			}).Create(answer).Error
		})
	})
	if err != nil {
		return err
	}
	attempt.Version++
	return nil
}

func (r *answerRepository) FindByAttemptID(ctx context.Context, attemptID uint) ([]model.AnswerRecord, error) {
	var answers []model.AnswerRecord
	err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Find(&answers).Error
	return answers, err
}

// UpdateScores persists per-answer correctness after scoring, in one
// transaction so a review screen never sees a half-scored attempt.
func (r *answerRepository) UpdateScores(ctx context.Context, answers []model.AnswerRecord) error {
	if len(answers) == 0 {
		return nil
	}
	return withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i := range answers {
				err := tx.Model(&model.AnswerRecord{}).
					Where("id = ?", answers[i].ID).
					Updates(map[string]any{
						"is_correct":    answers[i].IsCorrect,
						"marks_awarded": answers[i].MarksAwarded,
					}).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
	})
}
