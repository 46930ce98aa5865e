package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/vitalpath/scoring-service/internal/services"
	"github.com/vitalpath/scoring-service/internal/utils"
)

type HandlerManager struct {
	attemptHandler       *AttemptHandler
	rotationHandler      *RotationHandler
	psychometricsHandler *PsychometricsHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler:       NewAttemptHandler(serviceManager.Scoring(), logger),
		rotationHandler:      NewRotationHandler(serviceManager.Rotation(), logger),
		psychometricsHandler: NewPsychometricsHandler(serviceManager.Psychometrics(), serviceManager.Report(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.GET("/:id/domains/:domain/options", hm.attemptHandler.GetDomainOptions)
			attempts.POST("/:id/domains", hm.attemptHandler.SubmitDomain)
			attempts.POST("/:id/items", hm.attemptHandler.SubmitItem)
			attempts.POST("/:id/finalize", hm.attemptHandler.FinalizeAttempt)
		}

		// Rotation routes
		rotation := v1.Group("/rotation")
		{
			rotation.POST("/generate", hm.rotationHandler.GenerateActiveSet)
			rotation.GET("/:case_id", hm.rotationHandler.GetActiveSet)
			rotation.GET("/:case_id/history", hm.rotationHandler.GetHistory)
			rotation.GET("/:case_id/presented", hm.rotationHandler.GetPresentedItems)
		}

		// Psychometrics routes
		psychometrics := v1.Group("/psychometrics")
		{
			psychometrics.GET("/:case_id", hm.psychometricsHandler.AnalyzeCase)
			psychometrics.GET("/:case_id/export", hm.psychometricsHandler.ExportCaseAnalysis)
			psychometrics.GET("/:case_id/results/export", hm.psychometricsHandler.ExportAttemptResults)
		}

		// Item bank management
		items := v1.Group("/items")
		{
			items.POST("/import", hm.psychometricsHandler.ImportItems)
		}
	}
}
