package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prateek8318/RankUpAPI-sub001/internal/controller"
	"github.com/prateek8318/RankUpAPI-sub001/internal/service"
)

type UserAssessmentController struct {
	userAssessmentService service.UserAssessmentService
	attemptService        service.AttemptService
}

func NewUserAssessmentController(userAssessmentService service.UserAssessmentService, attemptService service.AttemptService) *UserAssessmentController {
	return &UserAssessmentController{
		userAssessmentService: userAssessmentService,
		attemptService:        attemptService,
	}
}

// GetAllAssessments godoc
// @Summary (User) List all available assessments
// @Tags User - Assessments
// @Produce json
// @Success 200 {array} dto.AssessmentSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /assessments [get]
func (c *UserAssessmentController) GetAllAssessments(ctx *gin.Context) {
	resp, err := c.userAssessmentService.GetAllAssessments(ctx.Request.Context())
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetAssessmentDetails godoc
// @Summary (User) Get an assessment with its ordered questions
// @Description Question answer keys are never included in the response.
// @Tags User - Assessments
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Success 200 {object} dto.AssessmentResponseDTO
// @Failure 404 {object} dto.ErrorResponse "Assessment not found"
// @Router /assessments/{assessment_id} [get]
func (c *UserAssessmentController) GetAssessmentDetails(ctx *gin.Context) {
	assessmentID, ok := controller.ParseUintParam(ctx, "assessment_id")
	if !ok {
		return
	}
	resp, err := c.userAssessmentService.GetAssessmentDetails(ctx.Request.Context(), assessmentID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetUserAttempts godoc
// @Summary (User) List a user's attempts for an assessment
// @Tags User - Assessments
// @Produce json
// @Param assessment_id path int true "Assessment ID"
// @Param user_id query int true "User ID"
// @Success 200 {array} dto.AttemptSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid user_id"
// @Router /assessments/{assessment_id}/my-attempts [get]
func (c *UserAssessmentController) GetUserAttempts(ctx *gin.Context) {
	assessmentID, ok := controller.ParseUintParam(ctx, "assessment_id")
	if !ok {
		return
	}
	userID, ok := controller.ParseUintQuery(ctx, "user_id")
	if !ok {
		return
	}
	resp, err := c.attemptService.ListForUser(ctx.Request.Context(), assessmentID, userID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
