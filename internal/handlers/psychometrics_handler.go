package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vitalpath/scoring-service/internal/services"
	"github.com/vitalpath/scoring-service/internal/utils"
)

type PsychometricsHandler struct {
	BaseHandler
	psychometricsService services.PsychometricsService
	reportService        services.ReportService
}

func NewPsychometricsHandler(
	psychometricsService services.PsychometricsService,
	reportService services.ReportService,
	logger utils.Logger,
) *PsychometricsHandler {
	return &PsychometricsHandler{
		BaseHandler:          NewBaseHandler(logger),
		psychometricsService: psychometricsService,
		reportService:        reportService,
	}
}

// AnalyzeCase computes the item-analysis summary for a case
// @Summary Analyze case
// @Tags psychometrics
// @Produce json
// @Param case_id path string true "Case ID"
// @Success 200 {object} psychometrics.CaseSummary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /psychometrics/{case_id} [get]
func (h *PsychometricsHandler) AnalyzeCase(c *gin.Context) {
	caseID := ParseStringIDParam(c, "case_id")
	if caseID == "" {
		return
	}

	h.LogRequest(c, "Analyzing case", "case_id", caseID)

	summary, err := h.psychometricsService.AnalyzeCase(c.Request.Context(), caseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportCaseAnalysis streams the item analysis as an Excel workbook
// @Summary Export case analysis
// @Tags psychometrics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param case_id path string true "Case ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /psychometrics/{case_id}/export [get]
func (h *PsychometricsHandler) ExportCaseAnalysis(c *gin.Context) {
	caseID := ParseStringIDParam(c, "case_id")
	if caseID == "" {
		return
	}

	data, err := h.reportService.ExportCaseAnalysisToExcel(c.Request.Context(), caseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="item_analysis_`+caseID+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportAttemptResults streams finalized attempt results as an Excel workbook
// @Summary Export attempt results
// @Tags psychometrics
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param case_id path string true "Case ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /psychometrics/{case_id}/results/export [get]
func (h *PsychometricsHandler) ExportAttemptResults(c *gin.Context) {
	caseID := ParseStringIDParam(c, "case_id")
	if caseID == "" {
		return
	}

	data, err := h.reportService.ExportAttemptResultsToExcel(c.Request.Context(), caseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="results_`+caseID+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ImportItems loads bank items from an uploaded Excel file
// @Summary Import item bank
// @Tags psychometrics
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Excel file"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /items/import [post]
func (h *PsychometricsHandler) ImportItems(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "file upload is required",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "failed to open uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing item bank", "filename", fileHeader.Filename)

	result, err := h.reportService.ImportItemsFromExcel(c.Request.Context(), file)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
