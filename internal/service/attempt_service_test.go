package service

import (
	"context"
	"testing"
	"time"

	"github.com/prateek8318/RankUpAPI-sub001/internal/apperr"
	"github.com/prateek8318/RankUpAPI-sub001/internal/dto"
	"github.com/prateek8318/RankUpAPI-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAttempt(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 60, 5, 5))

	resp, err := f.attempts.Start(context.Background(), 1, 42)
	require.NoError(t, err)

	assert.Equal(t, string(model.AttemptInProgress), resp.Status)
	assert.Equal(t, uint(42), resp.UserID)
	assert.Equal(t, uint(1), resp.AssessmentID)
	assert.Equal(t, 3600, resp.RemainingSeconds)
	assert.Equal(t, 10.0, resp.TotalMarks)
}

func TestStartAttempt_UnknownAssessment(t *testing.T) {
	f := newServiceFixture()

	_, err := f.attempts.Start(context.Background(), 99, 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStartAttempt_SecondActiveAttemptConflicts(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 60, 5, 5))
	ctx := context.Background()

	_, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)

	_, err = f.attempts.Start(ctx, 1, 42)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// A different user is unaffected.
	_, err = f.attempts.Start(ctx, 1, 43)
	assert.NoError(t, err)
}

func TestStartAttempt_AllowedAfterPreviousTerminates(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 60, 5, 5))
	ctx := context.Background()

	first, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)
	_, err = f.attempts.Abandon(ctx, first.ID)
	require.NoError(t, err)

	_, err = f.attempts.Start(ctx, 1, 42)
	assert.NoError(t, err)
}

func TestPauseResume_AccruesPauseTime(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 60, 5, 5))
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	paused, err := f.attempts.Pause(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.AttemptPaused), paused.Status)
	assert.Equal(t, 3000, paused.RemainingSeconds)

	f.clock.Advance(10 * time.Minute)
	resumed, err := f.attempts.Resume(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.AttemptInProgress), resumed.Status)
	assert.Equal(t, 600, resumed.TotalPauseSeconds)
	assert.Equal(t, 3000, resumed.RemainingSeconds)
	assert.Nil(t, resumed.LastPauseAt)
}

func TestPause_OnlyFromInProgress(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 60, 5, 5))
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)
	_, err = f.attempts.Pause(ctx, started.ID)
	require.NoError(t, err)

	_, err = f.attempts.Pause(ctx, started.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestResume_OnlyFromPaused(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 60, 5, 5))
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)

	_, err = f.attempts.Resume(ctx, started.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestComplete_WhilePausedRejected(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 60, 5, 5))
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)
	_, err = f.attempts.Pause(ctx, started.ID)
	require.NoError(t, err)

	_, err = f.attempts.Complete(ctx, started.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestComplete_ScoresAndTerminates(t *testing.T) {
	assessment := singleChoiceAssessment(1, 2, 60, 5, 5)
	f := newServiceFixture(assessment)
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)

	_, err = f.answers.RecordAnswer(ctx, started.ID, dto.RecordAnswerRequest{
		QuestionID:     assessment.Questions[0].QuestionID,
		SelectedOption: strPtr("A"),
	})
	require.NoError(t, err)
	_, err = f.answers.RecordAnswer(ctx, started.ID, dto.RecordAnswerRequest{
		QuestionID:     assessment.Questions[1].QuestionID,
		SelectedOption: strPtr("C"),
	})
	require.NoError(t, err)

	f.clock.Advance(20 * time.Minute)
	result, err := f.attempts.Complete(ctx, started.ID)
	require.NoError(t, err)

	assert.Equal(t, string(model.AttemptCompleted), result.Status)
	assert.Equal(t, 5.0, result.Score)
	assert.Equal(t, 50.0, result.Accuracy)
	assert.True(t, result.Passed)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 2, result.TotalQuestions)
	require.NotNil(t, result.CompletedAt)

	// Per-answer correctness is persisted with the score.
	records, err := f.answerRepo.FindByAttemptID(ctx, started.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	byQuestion := map[uint]model.AnswerRecord{}
	for _, r := range records {
		byQuestion[r.QuestionID] = r
	}
	correct := byQuestion[assessment.Questions[0].QuestionID]
	require.NotNil(t, correct.IsCorrect)
	assert.True(t, *correct.IsCorrect)
	assert.Equal(t, 5.0, correct.MarksAwarded)
	wrong := byQuestion[assessment.Questions[1].QuestionID]
	require.NotNil(t, wrong.IsCorrect)
	assert.False(t, *wrong.IsCorrect)
	assert.Equal(t, 0.0, wrong.MarksAwarded)

	// Completed is terminal.
	_, err = f.attempts.Complete(ctx, started.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	_, err = f.attempts.Pause(ctx, started.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestComplete_ReappliesScoresAfterLostVersionRace(t *testing.T) {
	assessment := singleChoiceAssessment(1, 2, 60, 5, 5)
	f := newServiceFixture(assessment)
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)
	_, err = f.answers.RecordAnswer(ctx, started.ID, dto.RecordAnswerRequest{
		QuestionID:     assessment.Questions[0].QuestionID,
		SelectedOption: strPtr("A"),
	})
	require.NoError(t, err)

	// The first versioned update of the submit loses its race; finalize
	// runs again on the re-read and must leave a single consistent result.
	f.attemptRepo.staleNextUpdate = true

	result, err := f.attempts.Complete(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, result.Score)
	assert.Equal(t, 1, result.CorrectCount)

	stored, err := f.attemptRepo.FindByID(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, stored.Status)

	records, err := f.answerRepo.FindByAttemptID(ctx, started.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].IsCorrect)
	assert.True(t, *records[0].IsCorrect)
	assert.Equal(t, 5.0, records[0].MarksAwarded)
}

func TestComplete_AfterDeadlineExpiresInstead(t *testing.T) {
	assessment := singleChoiceAssessment(1, 2, 30, 5, 5)
	f := newServiceFixture(assessment)
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)
	_, err = f.answers.RecordAnswer(ctx, started.ID, dto.RecordAnswerRequest{
		QuestionID:     assessment.Questions[0].QuestionID,
		SelectedOption: strPtr("A"),
	})
	require.NoError(t, err)

	f.clock.Advance(31 * time.Minute)
	_, err = f.attempts.Complete(ctx, started.ID)
	assert.ErrorIs(t, err, apperr.ErrExpired)

	// The attempt was expired and scored with what was on the ledger.
	stored, err := f.attemptRepo.FindByID(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptExpired, stored.Status)
	require.NotNil(t, stored.Score)
	assert.Equal(t, 5.0, *stored.Score)
	assert.NotNil(t, stored.CompletedAt)
}

func TestExpireIfOverdue_Idempotent(t *testing.T) {
	assessment := singleChoiceAssessment(1, 2, 30, 5, 5)
	f := newServiceFixture(assessment)
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)

	// Not yet overdue: no-op.
	expired, err := f.attempts.ExpireIfOverdue(ctx, started.ID)
	require.NoError(t, err)
	assert.False(t, expired)

	f.clock.Advance(31 * time.Minute)
	expired, err = f.attempts.ExpireIfOverdue(ctx, started.ID)
	require.NoError(t, err)
	assert.True(t, expired)

	first, err := f.attemptRepo.FindByID(ctx, started.ID)
	require.NoError(t, err)

	// Second call is a no-op and cannot re-score.
	expired, err = f.attempts.ExpireIfOverdue(ctx, started.ID)
	require.NoError(t, err)
	assert.False(t, expired)

	second, err := f.attemptRepo.FindByID(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, first.CompletedAt, second.CompletedAt)
	assert.Equal(t, first.Version, second.Version)
}

func TestExpireIfOverdue_CountsPausedTime(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 30, 5, 5))
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)
	_, err = f.attempts.Pause(ctx, started.ID)
	require.NoError(t, err)

	// A day passes while paused; only 10 active minutes have been used.
	f.clock.Advance(24 * time.Hour)
	expired, err := f.attempts.ExpireIfOverdue(ctx, started.ID)
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestAbandon_LeavesNoScore(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 60, 5, 5))
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)

	resp, err := f.attempts.Abandon(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.AttemptAbandoned), resp.Status)
	assert.Nil(t, resp.CompletedAt)
	assert.Nil(t, resp.Score)

	// No result exists for an abandoned attempt.
	_, err = f.attempts.Result(ctx, started.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestResult_RebuildsFromPersistedScores(t *testing.T) {
	assessment := singleChoiceAssessment(1, 2, 60, 5, 5)
	f := newServiceFixture(assessment)
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)
	_, err = f.answers.RecordAnswer(ctx, started.ID, dto.RecordAnswerRequest{
		QuestionID:     assessment.Questions[0].QuestionID,
		SelectedOption: strPtr("A"),
	})
	require.NoError(t, err)
	submitted, err := f.attempts.Complete(ctx, started.ID)
	require.NoError(t, err)

	// FindByIDWithAnswers on the fake does not preload, so feed the stored
	// answers back through the attempt the way the query would.
	stored, err := f.attemptRepo.FindByID(ctx, started.ID)
	require.NoError(t, err)
	stored.Answers, err = f.answerRepo.FindByAttemptID(ctx, started.ID)
	require.NoError(t, err)
	f.attemptRepo.attempts[stored.ID] = *stored

	result, err := f.attempts.Result(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, submitted.Score, result.Score)
	assert.Equal(t, submitted.Accuracy, result.Accuracy)
	assert.Equal(t, submitted.CorrectCount, result.CorrectCount)
	assert.Len(t, result.Questions, 2)
}

func TestResult_PendingAttemptHasNoResult(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 60, 5, 5))
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)

	_, err = f.attempts.Result(ctx, started.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestListForUser_NewestFirst(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 60, 5, 5))
	ctx := context.Background()

	first, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)
	_, err = f.attempts.Abandon(ctx, first.ID)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	second, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)

	summaries, err := f.attempts.ListForUser(ctx, 1, 42)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, second.ID, summaries[0].ID)
	assert.Equal(t, first.ID, summaries[1].ID)
}

func TestUpdateProgress(t *testing.T) {
	f := newServiceFixture(singleChoiceAssessment(1, 2, 60, 5, 5))
	ctx := context.Background()

	started, err := f.attempts.Start(ctx, 1, 42)
	require.NoError(t, err)

	require.NoError(t, f.attempts.UpdateProgress(ctx, started.ID, 7))
	status, err := f.attempts.Status(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, status.CurrentQuestionIndex)
}
