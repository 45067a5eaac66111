package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prateek8318/RankUpAPI-sub001/internal/controller"
	"github.com/prateek8318/RankUpAPI-sub001/internal/dto"
	"github.com/prateek8318/RankUpAPI-sub001/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminAssessmentController struct {
	adminAssessmentService service.AdminAssessmentService
	questionService        service.QuestionService
}

func NewAdminAssessmentController(adminAssessmentService service.AdminAssessmentService, questionService service.QuestionService) *AdminAssessmentController {
	return &AdminAssessmentController{
		adminAssessmentService: adminAssessmentService,
		questionService:        questionService,
	}
}

// CreateAssessment godoc
// @Summary (Admin) Create a new assessment with its questions
// @Description Admin creates an assessment; total marks are derived from the question marks.
// @Tags Admin - Assessments
// @Accept json
// @Produce json
// @Param assessment_data body dto.AssessmentCreateDTO true "Assessment creation data including all questions"
// @Success 201 {object} dto.AssessmentResponseDTO "Assessment created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/assessments [post]
func (c *AdminAssessmentController) CreateAssessment(ctx *gin.Context) {
	var req dto.AssessmentCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateAssessment: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.adminAssessmentService.CreateAssessment(ctx.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Admin CreateAssessment: Service error")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to create assessment", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// GetQuestion godoc
// @Summary (Admin) Get a question from the question bank
// @Tags Admin - Questions
// @Produce json
// @Param question_id path int true "Question ID"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{question_id} [get]
func (c *AdminAssessmentController) GetQuestion(ctx *gin.Context) {
	questionID, ok := controller.ParseUintParam(ctx, "question_id")
	if !ok {
		return
	}
	resp, err := c.questionService.GetQuestion(ctx.Request.Context(), questionID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// UpdateQuestion godoc
// @Summary (Admin) Update a question in the question bank
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Param question_id path int true "Question ID"
// @Param question_data body dto.QuestionUpdateDTO true "Fields to update"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{question_id} [put]
func (c *AdminAssessmentController) UpdateQuestion(ctx *gin.Context) {
	questionID, ok := controller.ParseUintParam(ctx, "question_id")
	if !ok {
		return
	}
	var req dto.QuestionUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	resp, err := c.questionService.UpdateQuestion(ctx.Request.Context(), questionID, req)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question from the question bank
// @Tags Admin - Questions
// @Param question_id path int true "Question ID"
// @Success 204 "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Router /admin/questions/{question_id} [delete]
func (c *AdminAssessmentController) DeleteQuestion(ctx *gin.Context) {
	questionID, ok := controller.ParseUintParam(ctx, "question_id")
	if !ok {
		return
	}
	if err := c.questionService.DeleteQuestion(ctx.Request.Context(), questionID); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
