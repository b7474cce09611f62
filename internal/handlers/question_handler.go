package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/services"
	"github.com/naijaprep/cbt-service/internal/utils"
)

// QuestionHandler exposes catalog lookups and the admin import path.
type QuestionHandler struct {
	BaseHandler
	sessions services.SessionService
	importer services.QuestionImportService
}

func NewQuestionHandler(sessions services.SessionService, importer services.QuestionImportService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		sessions:    sessions,
		importer:    importer,
	}
}

// Subjects lists distinct subjects for an exam type.
// GET /questions/subjects/:exam_type
func (h *QuestionHandler) Subjects(c *gin.Context) {
	if _, ok := h.RequireUserID(c); !ok {
		return
	}

	subjects, err := h.sessions.Subjects(c.Request.Context(), models.ExamType(c.Param("exam_type")))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subjects)
}

// Years lists distinct years for an exam type and subject, newest first.
// GET /questions/years/:exam_type/:subject
func (h *QuestionHandler) Years(c *gin.Context) {
	if _, ok := h.RequireUserID(c); !ok {
		return
	}

	years, err := h.sessions.Years(c.Request.Context(), models.ExamType(c.Param("exam_type")), c.Param("subject"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, years)
}

// Import seeds the catalog from an uploaded CSV or Excel file.
// POST /questions/import
func (h *QuestionHandler) Import(c *gin.Context) {
	if _, ok := h.RequireUserID(c); !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "file upload required", Details: err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "failed to open upload", Details: err.Error()})
		return
	}
	defer file.Close()

	h.LogRequest(c, "Importing question catalog", "filename", fileHeader.Filename)

	result, err := h.importer.ImportFromFile(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		// Anything short of a storage failure means the upload itself was bad.
		if services.IsRetryable(err) {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Import failed", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Import completed", Data: result})
}
