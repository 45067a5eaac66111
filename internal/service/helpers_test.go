package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prateek8318/RankUpAPI-sub001/internal/model"
	"github.com/prateek8318/RankUpAPI-sub001/internal/repository"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	nextID   uint
	attempts map[uint]model.Attempt

	// joined in by FindActiveWithAssessment, mirroring the preload
	assessmentSrc *fakeAssessmentRepo

	// fails the next UpdateVersioned with ErrStaleVersion to simulate a
	// lost write race
	staleNextUpdate bool
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{nextID: 1, attempts: make(map[uint]model.Attempt)}
}

func (r *fakeAttemptRepo) Create(ctx context.Context, attempt *model.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attempts {
		if a.UserID == attempt.UserID && a.AssessmentID == attempt.AssessmentID && a.Status.IsActive() {
			return gorm.ErrDuplicatedKey
		}
	}
	attempt.ID = r.nextID
	r.nextID++
	r.attempts[attempt.ID] = *attempt
	return nil
}

func (r *fakeAttemptRepo) FindByID(ctx context.Context, id uint) (*model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.attempts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r *fakeAttemptRepo) FindByIDWithAnswers(ctx context.Context, id uint) (*model.Attempt, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeAttemptRepo) FindActiveByUserAndAssessment(ctx context.Context, userID, assessmentID uint) (*model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attempts {
		if a.UserID == userID && a.AssessmentID == assessmentID && a.Status.IsActive() {
			found := a
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAttemptRepo) FindAllByUserAndAssessment(ctx context.Context, userID, assessmentID uint) ([]model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Attempt
	for _, a := range r.attempts {
		if a.UserID == userID && a.AssessmentID == assessmentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (r *fakeAttemptRepo) FindActiveWithAssessment(ctx context.Context, limit int) ([]model.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Attempt
	for _, a := range r.attempts {
		if !a.Status.IsActive() {
			continue
		}
		if r.assessmentSrc != nil {
			if assessment, ok := r.assessmentSrc.assessments[a.AssessmentID]; ok {
				a.Assessment = assessment
			}
		}
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) UpdateVersioned(ctx context.Context, attempt *model.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleNextUpdate {
		r.staleNextUpdate = false
		return repository.ErrStaleVersion
	}
	stored, ok := r.attempts[attempt.ID]
	if !ok || stored.Version != attempt.Version {
		return repository.ErrStaleVersion
	}
	attempt.Version++
	r.attempts[attempt.ID] = *attempt
	return nil
}

type fakeAssessmentRepo struct {
	mu          sync.Mutex
	assessments map[uint]model.Assessment

	// single-shot hook run at the top of FindByIDWithQuestions, for wedging
	// a concurrent operation into a check-then-write window
	onFindWithQuestions func()
}

func newFakeAssessmentRepo(assessments ...model.Assessment) *fakeAssessmentRepo {
	r := &fakeAssessmentRepo{assessments: make(map[uint]model.Assessment)}
	for _, a := range assessments {
		r.assessments[a.ID] = a
	}
	return r
}

func (r *fakeAssessmentRepo) Create(ctx context.Context, assessment *model.Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assessments[assessment.ID] = *assessment
	return nil
}

func (r *fakeAssessmentRepo) FindByID(ctx context.Context, id uint) (*model.Assessment, error) {
	return r.FindByIDWithQuestions(ctx, id)
}

func (r *fakeAssessmentRepo) FindByIDWithQuestions(ctx context.Context, id uint) (*model.Assessment, error) {
	if hook := r.onFindWithQuestions; hook != nil {
		r.onFindWithQuestions = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.assessments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &a, nil
}

func (r *fakeAssessmentRepo) FindAllWithQuestionCount(ctx context.Context) ([]struct {
	model.Assessment
	QuestionCount int
}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []struct {
		model.Assessment
		QuestionCount int
	}
	for _, a := range r.assessments {
		out = append(out, struct {
			model.Assessment
			QuestionCount int
		}{Assessment: a, QuestionCount: len(a.Questions)})
	}
	return out, nil
}

type answerKey struct {
	attemptID  uint
	questionID uint
}

type fakeAnswerRepo struct {
	mu      sync.Mutex
	nextID  uint
	answers map[answerKey]model.AnswerRecord

	// consulted for the version/status guard, standing in for the
	// transactional conditional update on the attempts table
	attemptSrc *fakeAttemptRepo
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{nextID: 1, answers: make(map[answerKey]model.AnswerRecord)}
}

func (r *fakeAnswerRepo) Upsert(ctx context.Context, attempt *model.Attempt, answer *model.AnswerRecord) error {
	if r.attemptSrc != nil {
		r.attemptSrc.mu.Lock()
		stored, ok := r.attemptSrc.attempts[attempt.ID]
		if !ok || stored.Version != attempt.Version || stored.Status != model.AttemptInProgress {
			r.attemptSrc.mu.Unlock()
			return repository.ErrStaleVersion
		}
		stored.Version++
		r.attemptSrc.attempts[attempt.ID] = stored
		r.attemptSrc.mu.Unlock()
		attempt.Version++
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := answerKey{attemptID: answer.AttemptID, questionID: answer.QuestionID}
	if existing, ok := r.answers[key]; ok {
		answer.ID = existing.ID
	} else {
		answer.ID = r.nextID
		r.nextID++
	}
	r.answers[key] = *answer
	return nil
}

func (r *fakeAnswerRepo) FindByAttemptID(ctx context.Context, attemptID uint) ([]model.AnswerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.AnswerRecord
	for _, a := range r.answers {
		if a.AttemptID == attemptID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAnswerRepo) UpdateScores(ctx context.Context, answers []model.AnswerRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, update := range answers {
		for key, stored := range r.answers {
			if stored.ID == update.ID {
				stored.IsCorrect = update.IsCorrect
				stored.MarksAwarded = update.MarksAwarded
				r.answers[key] = stored
			}
		}
	}
	return nil
}

func strPtr(s string) *string { return &s }

// singleChoiceAssessment builds an assessment with n single-choice questions
// worth marksEach apiece, every correct option "A".
func singleChoiceAssessment(id uint, n int, durationMinutes int, marksEach, passingMarks float64) model.Assessment {
	assessment := model.Assessment{
		ID:              id,
		Title:           "Mock Test",
		DurationMinutes: durationMinutes,
		TotalMarks:      float64(n) * marksEach,
		PassingMarks:    passingMarks,
	}
	for i := 1; i <= n; i++ {
		qid := uint(100 + i)
		assessment.Questions = append(assessment.Questions, model.AssessmentQuestion{
			ID:           uint(i),
			AssessmentID: id,
			QuestionID:   qid,
			Question: model.Question{
				ID:            qid,
				Prompt:        "prompt",
				Type:          model.QuestionTypeSingleChoice,
				OptionA:       strPtr("a"),
				OptionB:       strPtr("b"),
				OptionC:       strPtr("c"),
				OptionD:       strPtr("d"),
				CorrectOption: strPtr("A"),
			},
			Marks:        marksEach,
			DisplayOrder: i,
		})
	}
	return assessment
}

type serviceFixture struct {
	clock          *fakeClock
	attemptRepo    *fakeAttemptRepo
	assessmentRepo *fakeAssessmentRepo
	answerRepo     *fakeAnswerRepo
	governor       *TimeGovernor
	attempts       AttemptService
	answers        AnswerService
}

func newServiceFixture(assessments ...model.Assessment) *serviceFixture {
	clock := newFakeClock()
	attemptRepo := newFakeAttemptRepo()
	assessmentRepo := newFakeAssessmentRepo(assessments...)
	attemptRepo.assessmentSrc = assessmentRepo
	answerRepo := newFakeAnswerRepo()
	answerRepo.attemptSrc = attemptRepo
	governor := NewTimeGovernor(clock)
	attempts := NewAttemptService(attemptRepo, assessmentRepo, answerRepo, NewScoringService(), governor, clock)
	answers := NewAnswerService(attemptRepo, assessmentRepo, answerRepo, attempts, governor, clock)
	return &serviceFixture{
		clock:          clock,
		attemptRepo:    attemptRepo,
		assessmentRepo: assessmentRepo,
		answerRepo:     answerRepo,
		governor:       governor,
		attempts:       attempts,
		answers:        answers,
	}
}
