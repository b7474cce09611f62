package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/naijaprep/cbt-service/internal/services"
	"github.com/naijaprep/cbt-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER =====

// BaseHandler provides shared logging and error mapping for all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"user_id", h.userID(c),
	}
	fields = append(fields, additionalFields...)
	h.logger.Info(message, fields...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"user_id", h.userID(c),
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

// userID reads the id the auth middleware put on the context. Token
// verification itself is owned by the gateway in front of this service.
func (h *BaseHandler) userID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// RequireUserID aborts with 401 when no authenticated user is on the context.
func (h *BaseHandler) RequireUserID(c *gin.Context) (string, bool) {
	userID := h.userID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return "", false
	}
	return userID, true
}

// HandleServiceError maps the service error taxonomy onto HTTP statuses.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrInvalidSelection):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrSessionNotActive):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrUnknownQuestion):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: err.Error()})
	case services.IsRetryable(err):
		h.LogError(c, err, "Transient storage failure")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Message: "temporary failure, please retry"})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
	}
}
