package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/tutorledger/internal/app/models/dto"
	"github.com/yigit/tutorledger/internal/app/services"
	"github.com/yigit/tutorledger/internal/middleware"
)

// StudentController handles student endpoints
type StudentController struct {
	studentService services.StudentService
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		logger:         logger,
	}
}

// ListStudents lists the students the requester may see
// @Summary List students
// @Description Teachers get every student, parents only their own children. Each entry carries its ledger.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentSummary}
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	students, err := c.studentService.ListStudents(ctx.Request.Context(), middleware.CurrentIdentity(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(students, ""))
}

// CreateStudent adds a student
// @Summary Add a student
// @Description Teacher only. The parent must already have an account unless auto provisioning is enabled.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student"
// @Success 201 {object} dto.APIResponse{data=dto.CreateStudentResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Teacher only"
// @Failure 422 {object} dto.ErrorResponse "No parent account matches the email"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	resp, err := c.studentService.CreateStudent(ctx.Request.Context(), middleware.CurrentIdentity(ctx), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("parentEmail", req.ParentEmail).Msg("Failed to create student")
		middleware.HandleAPIError(ctx, err)
		return
	}

	message := fmt.Sprintf("Student %s added", resp.Student.Name)
	if resp.ProvisionedParent != nil {
		message = fmt.Sprintf("Student %s added with a new parent account %s", resp.Student.Name, resp.ProvisionedParent.User.Username)
	}
	respond(ctx, http.StatusCreated, resp, message)
}

// GetStudent returns a student's detail
// @Summary Student detail
// @Description Ledger and sessions (newest first). Parents may only open their own children.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentDetailResponse}
// @Failure 403 {object} dto.ErrorResponse "Not your student"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	studentID, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	detail, err := c.studentService.GetStudentDetail(ctx.Request.Context(), middleware.CurrentIdentity(ctx), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(detail, ""))
}

// ListStudentSessions lists a student's sessions
// @Summary Student sessions
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Session}
// @Failure 403 {object} dto.ErrorResponse "Not your student"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/sessions [get]
func (c *StudentController) ListStudentSessions(ctx *gin.Context) {
	studentID, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}

	sessions, err := c.studentService.ListStudentSessions(ctx.Request.Context(), middleware.CurrentIdentity(ctx), studentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sessions, ""))
}

// UpdatePrice changes a student's default price
// @Summary Change default price
// @Description Teacher only. Existing sessions keep their amount.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.UpdateStudentPriceRequest true "New price"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Teacher only"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/price [patch]
func (c *StudentController) UpdatePrice(ctx *gin.Context) {
	studentID, ok := middleware.ParamID(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateStudentPriceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	student, err := c.studentService.UpdateDefaultPrice(ctx.Request.Context(), middleware.CurrentIdentity(ctx), studentID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, student, fmt.Sprintf("Default price of %s is now %s", student.Name, student.DefaultPrice))
}
