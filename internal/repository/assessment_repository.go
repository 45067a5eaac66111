package repository

import (
	"context"

	"github.com/prateek8318/RankUpAPI-sub001/internal/model"
	"gorm.io/gorm"
)

type AssessmentRepository interface {
	Create(ctx context.Context, assessment *model.Assessment) error
	FindByID(ctx context.Context, id uint) (*model.Assessment, error)
	FindByIDWithQuestions(ctx context.Context, id uint) (*model.Assessment, error)
	FindAllWithQuestionCount(ctx context.Context) ([]struct {
		model.Assessment
		QuestionCount int
	}, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) Create(ctx context.Context, assessment *model.Assessment) error {
	// GORM creates the associated AssessmentQuestion rows when
	// assessment.Questions is populated.
	return withRetry(func() error {
		return r.db.WithContext(ctx).Create(assessment).Error
	})
}

func (r *assessmentRepository) FindByID(ctx context.Context, id uint) (*model.Assessment, error) {
	var assessment model.Assessment
	if err := r.db.WithContext(ctx).First(&assessment, id).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindByIDWithQuestions(ctx context.Context, id uint) (*model.Assessment, error) {
	var assessment model.Assessment
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("assessment_questions.display_order ASC")
		}).
		Preload("Questions.Question").
		First(&assessment, id).Error
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (r *assessmentRepository) FindAllWithQuestionCount(ctx context.Context) ([]struct {
	model.Assessment
	QuestionCount int
}, error) {
	var results []struct {
		model.Assessment
		QuestionCount int
	}
	err := r.db.WithContext(ctx).Model(&model.Assessment{}).
		Select("assessments.*, (SELECT COUNT(*) FROM assessment_questions WHERE assessment_questions.assessment_id = assessments.id AND assessment_questions.deleted_at IS NULL) as question_count").
		Where("assessments.deleted_at IS NULL").
		Order("assessments.created_at DESC").
		Scan(&results).Error
	return results, err
}
