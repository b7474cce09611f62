package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/services"
	"github.com/naijaprep/cbt-service/internal/utils"
)

// CBTHandler exposes the exam session lifecycle over HTTP.
type CBTHandler struct {
	BaseHandler
	sessions  services.SessionService
	validator *utils.Validator
}

func NewCBTHandler(sessions services.SessionService, validator *utils.Validator, logger utils.Logger) *CBTHandler {
	return &CBTHandler{
		BaseHandler: NewBaseHandler(logger),
		sessions:    sessions,
		validator:   validator,
	}
}

// StartSession samples a question set and opens a timed session.
// GET /cbt/questions/:exam_type/:subject
func (h *CBTHandler) StartSession(c *gin.Context) {
	userID, ok := h.RequireUserID(c)
	if !ok {
		return
	}

	req := &services.StartSessionRequest{
		UserID:   userID,
		ExamType: models.ExamType(c.Param("exam_type")),
		Subject:  c.Param("subject"),
	}

	h.LogRequest(c, "Starting CBT session", "exam_type", req.ExamType, "subject", req.Subject)

	response, err := h.sessions.Start(c.Request.Context(), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

type recordAnswerBody struct {
	SessionID  string `json:"session_id" validate:"required,uuid4"`
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
	TimeSpent  int    `json:"time_spent" validate:"omitempty,min=0"`
}

// RecordAnswer stores one answer; repeated answers for a question overwrite.
// POST /cbt/answer
func (h *CBTHandler) RecordAnswer(c *gin.Context) {
	if _, ok := h.RequireUserID(c); !ok {
		return
	}

	var body recordAnswerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.validator.Validate(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: err.Error()})
		return
	}

	err := h.sessions.RecordAnswer(c.Request.Context(), &services.RecordAnswerRequest{
		SessionID:  body.SessionID,
		QuestionID: body.QuestionID,
		Answer:     body.Answer,
		TimeSpent:  body.TimeSpent,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Answer recorded"})
}

type submitBody struct {
	SessionID string `json:"session_id" validate:"required,uuid4"`
}

// Submit scores the session. Idempotent: resubmitting returns the stored
// result.
// POST /cbt/submit
func (h *CBTHandler) Submit(c *gin.Context) {
	if _, ok := h.RequireUserID(c); !ok {
		return
	}

	var body submitBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request payload", Details: err.Error()})
		return
	}
	if err := h.validator.Validate(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: err.Error()})
		return
	}

	h.LogRequest(c, "Submitting CBT session", "session_id", body.SessionID)

	result, err := h.sessions.Submit(c.Request.Context(), body.SessionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "CBT submitted successfully", Data: result})
}

// TimeRemaining reports the server-authoritative seconds left.
// GET /cbt/time-remaining/:session_id
func (h *CBTHandler) TimeRemaining(c *gin.Context) {
	if _, ok := h.RequireUserID(c); !ok {
		return
	}

	remaining, err := h.sessions.TimeRemaining(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"time_remaining": remaining})
}

// Results lists the caller's result history, newest first.
// GET /cbt/results
func (h *CBTHandler) Results(c *gin.Context) {
	userID, ok := h.RequireUserID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	results, err := h.sessions.Results(c.Request.Context(), userID, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
