package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/services"
	"github.com/vitalpath/scoring-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	scoringService services.ScoringService
}

func NewAttemptHandler(scoringService services.ScoringService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		scoringService: scoringService,
	}
}

// StartAttempt opens (or resumes) an attempt for a student on a case
// @Summary Start attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Param attempt body services.StartAttemptRequest true "Attempt data"
// @Success 201 {object} services.AttemptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/start [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req services.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting attempt", "case_id", req.CaseID, "student_id", req.StudentID)

	attempt, err := h.scoringService.Start(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// GetAttempt retrieves an attempt with its score report if finalized
// @Summary Get attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} services.AttemptResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	attempt, err := h.scoringService.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// GetDomainOptions returns the selectable option pool for one clinical domain
// @Summary Get domain options
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Param domain path string true "Clinical domain"
// @Success 200 {object} services.DomainOptionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/domains/{domain}/options [get]
func (h *AttemptHandler) GetDomainOptions(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}
	domain := ParseStringIDParam(c, "domain")
	if domain == "" {
		return
	}

	options, err := h.scoringService.GetDomainOptions(c.Request.Context(), id, models.Domain(domain))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, options)
}

// SubmitDomain records a domain selection and returns immediate feedback
// @Summary Submit domain answer
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path string true "Attempt ID"
// @Param answer body services.SubmitDomainRequest true "Domain answer"
// @Success 200 {object} models.ScoreDetail
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/domains [post]
func (h *AttemptHandler) SubmitDomain(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.SubmitDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	detail, err := h.scoringService.SubmitDomain(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// SubmitItem records an item answer and returns immediate feedback
// @Summary Submit item answer
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path string true "Attempt ID"
// @Param answer body services.SubmitItemRequest true "Item answer"
// @Success 200 {object} models.ScoreDetail
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/items [post]
func (h *AttemptHandler) SubmitItem(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.SubmitItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	detail, err := h.scoringService.SubmitItem(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// FinalizeAttempt freezes an attempt and returns the full score report
// @Summary Finalize attempt
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} services.AttemptResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/{id}/finalize [post]
func (h *AttemptHandler) FinalizeAttempt(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Finalizing attempt", "attempt_id", id)

	attempt, err := h.scoringService.Finalize(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}
