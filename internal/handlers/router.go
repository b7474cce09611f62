package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/naijaprep/cbt-service/internal/services"
	"github.com/naijaprep/cbt-service/internal/utils"
)

type HandlerManager struct {
	cbtHandler      *CBTHandler
	questionHandler *QuestionHandler
}

func NewHandlerManager(
	sessions services.SessionService,
	importer services.QuestionImportService,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		cbtHandler:      NewCBTHandler(sessions, validator, logger),
		questionHandler: NewQuestionHandler(sessions, importer, logger),
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "cbt-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		cbt := v1.Group("/cbt")
		{
			cbt.GET("/questions/:exam_type/:subject", hm.cbtHandler.StartSession)
			cbt.POST("/answer", hm.cbtHandler.RecordAnswer)
			cbt.POST("/submit", hm.cbtHandler.Submit)
			cbt.GET("/time-remaining/:session_id", hm.cbtHandler.TimeRemaining)
			cbt.GET("/results", hm.cbtHandler.Results)
		}

		questions := v1.Group("/questions")
		{
			questions.GET("/subjects/:exam_type", hm.questionHandler.Subjects)
			questions.GET("/years/:exam_type/:subject", hm.questionHandler.Years)
			questions.POST("/import", hm.questionHandler.Import)
		}
	}
}
