package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prateek8318/RankUpAPI-sub001/internal/controller"
	"github.com/prateek8318/RankUpAPI-sub001/internal/dto"
	"github.com/prateek8318/RankUpAPI-sub001/internal/service"
	"github.com/rs/zerolog/log"
)

type UserAttemptController struct {
	attemptService service.AttemptService
	answerService  service.AnswerService
}

func NewUserAttemptController(attemptService service.AttemptService, answerService service.AnswerService) *UserAttemptController {
	return &UserAttemptController{
		attemptService: attemptService,
		answerService:  answerService,
	}
}

// StartAttempt godoc
// @Summary (User) Start a timed attempt at an assessment
// @Description Creates an in-progress attempt. Fails with 409 if the user already has an active attempt for this assessment.
// @Tags User - Attempts
// @Accept json
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Param start_data body dto.StartAttemptRequest true "User starting the attempt"
// @Success 201 {object} dto.AttemptResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Failure 409 {object} dto.ErrorResponse "Active attempt already exists"
// @Router /assessments/{assessment_id}/attempts [post]
func (c *UserAttemptController) StartAttempt(ctx *gin.Context) {
	assessmentID, ok := controller.ParseUintParam(ctx, "assessment_id")
	if !ok {
		return
	}
	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("User StartAttempt: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.attemptService.Start(ctx.Request.Context(), assessmentID, req.UserID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetAttemptStatus godoc
// @Summary (User) Get an attempt snapshot with remaining time
// @Tags User - Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /attempts/{attempt_id} [get]
func (c *UserAttemptController) GetAttemptStatus(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	resp, err := c.attemptService.Status(ctx.Request.Context(), attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// PauseAttempt godoc
// @Summary (User) Pause an in-progress attempt
// @Tags User - Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt is not in progress"
// @Router /attempts/{attempt_id}/pause [post]
func (c *UserAttemptController) PauseAttempt(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	resp, err := c.attemptService.Pause(ctx.Request.Context(), attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ResumeAttempt godoc
// @Summary (User) Resume a paused attempt
// @Description The paused interval is added to the attempt's pause total; remaining time is unchanged by the pause.
// @Tags User - Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt is not paused"
// @Router /attempts/{attempt_id}/resume [post]
func (c *UserAttemptController) ResumeAttempt(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	resp, err := c.attemptService.Resume(ctx.Request.Context(), attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// AbandonAttempt godoc
// @Summary (User) Abandon an active attempt without scoring
// @Tags User - Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already terminal"
// @Router /attempts/{attempt_id}/abandon [post]
func (c *UserAttemptController) AbandonAttempt(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	resp, err := c.attemptService.Abandon(ctx.Request.Context(), attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// RecordAnswer godoc
// @Summary (User) Record or overwrite the answer for one question
// @Description Upsert semantics: answering the same question again replaces the previous answer. Writes after expiry fail with 410 and the attempt is expired.
// @Tags User - Attempts
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param answer_data body dto.RecordAnswerRequest true "The answer"
// @Success 200 {object} dto.AnswerRecordDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Attempt or question not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt not in progress"
// @Failure 410 {object} dto.ErrorResponse "Attempt time expired"
// @Router /attempts/{attempt_id}/answers [put]
func (c *UserAttemptController) RecordAnswer(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	var req dto.RecordAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("User RecordAnswer: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if req.SelectedOption == nil && req.TextAnswer == nil && !req.Skipped {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Answer must include selected_option, text_answer or skipped"})
		return
	}

	resp, err := c.answerService.RecordAnswer(ctx.Request.Context(), attemptID, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAnswers godoc
// @Summary (User) Get the attempt's current answers
// @Description Used on resume to redisplay prior answers.
// @Tags User - Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {array} dto.AnswerRecordDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /attempts/{attempt_id}/answers [get]
func (c *UserAttemptController) GetAnswers(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	resp, err := c.answerService.GetAnswers(ctx.Request.Context(), attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitAttempt godoc
// @Summary (User) Submit an in-progress attempt for scoring
// @Description A paused attempt must be resumed before it can be submitted. If time ran out the attempt is expired instead and 410 is returned.
// @Tags User - Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResultDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt not in progress"
// @Failure 410 {object} dto.ErrorResponse "Attempt time expired"
// @Router /attempts/{attempt_id}/submit [post]
func (c *UserAttemptController) SubmitAttempt(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	resp, err := c.attemptService.Complete(ctx.Request.Context(), attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAttemptResult godoc
// @Summary (User) Get the score report of a scored attempt
// @Tags User - Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptResultDTO
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt not scored yet"
// @Router /attempts/{attempt_id}/result [get]
func (c *UserAttemptController) GetAttemptResult(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	resp, err := c.attemptService.Result(ctx.Request.Context(), attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
