package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitalpath/scoring-service/internal/services"
	"github.com/vitalpath/scoring-service/internal/utils"
)

type RotationHandler struct {
	BaseHandler
	rotationService services.RotationService
}

func NewRotationHandler(rotationService services.RotationService, logger utils.Logger) *RotationHandler {
	return &RotationHandler{
		BaseHandler:     NewBaseHandler(logger),
		rotationService: rotationService,
	}
}

// GenerateActiveSet draws a fresh active item set for a case
// @Summary Generate active set
// @Tags rotation
// @Accept json
// @Produce json
// @Param request body services.GenerateActiveSetRequest true "Generation request"
// @Success 201 {object} services.ActiveSetResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /rotation/generate [post]
func (h *RotationHandler) GenerateActiveSet(c *gin.Context) {
	var req services.GenerateActiveSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Generating active set", "case_id", req.CaseID, "generated_by", req.GeneratedBy)

	set, err := h.rotationService.Generate(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, set)
}

// GetActiveSet returns the current active set of a case
// @Summary Get active set
// @Tags rotation
// @Produce json
// @Param case_id path string true "Case ID"
// @Success 200 {object} services.ActiveSetResponse
// @Failure 404 {object} ErrorResponse
// @Router /rotation/{case_id} [get]
func (h *RotationHandler) GetActiveSet(c *gin.Context) {
	caseID := ParseStringIDParam(c, "case_id")
	if caseID == "" {
		return
	}

	set, err := h.rotationService.Get(c.Request.Context(), caseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, set)
}

// GetHistory returns the generation log of a case's active set, oldest first
// @Summary Get rotation history
// @Tags rotation
// @Produce json
// @Param case_id path string true "Case ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /rotation/{case_id}/history [get]
func (h *RotationHandler) GetHistory(c *gin.Context) {
	caseID := ParseStringIDParam(c, "case_id")
	if caseID == "" {
		return
	}

	history, err := h.rotationService.History(c.Request.Context(), caseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Rotation history",
		Data:    history,
	})
}

// GetPresentedItems returns the items one examinee is presented for a case
// @Summary Get presented items
// @Tags rotation
// @Produce json
// @Param case_id path string true "Case ID"
// @Param student_id query string true "Student ID"
// @Param session_id query string true "Session ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /rotation/{case_id}/presented [get]
func (h *RotationHandler) GetPresentedItems(c *gin.Context) {
	caseID := ParseStringIDParam(c, "case_id")
	if caseID == "" {
		return
	}

	studentID := c.Query("student_id")
	sessionID := c.Query("session_id")
	if studentID == "" || sessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "student_id and session_id query parameters are required",
		})
		return
	}

	items, err := h.rotationService.PresentedItems(c.Request.Context(), caseID, studentID, sessionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Presented items",
		Data:    items,
	})
}
