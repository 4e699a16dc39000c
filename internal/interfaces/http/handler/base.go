package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/finops/backend/internal/application/listing"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/logger"
	"github.com/finops/backend/internal/interfaces/http/dto"
	"github.com/finops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct {
	logger *zap.Logger
	// debug adds the cause chain and a stack trace to 5xx bodies.
	debug bool
}

// NewBaseHandler creates a BaseHandler. debug must be false in production.
func NewBaseHandler(logger *zap.Logger, debug bool) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger, debug: debug}
}

func requestID(c *gin.Context) string {
	return logger.GetRequestID(c.Request.Context())
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponse(code, message, requestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError converts err to a response. Failures the client cannot fix
// are logged with the request ID before the body is written.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	status, info := dto.FromError(err, requestID(c), h.debug)
	log := logger.For(c.Request.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		if h.debug {
			info.Stack = string(debug.Stack())
		}
	} else {
		log.Debug("Request rejected",
			zap.String("route", c.FullPath()),
			zap.String("code", info.Code),
			zap.Error(err),
		)
	}
	c.JSON(status, dto.Response{Success: false, Error: info})
}

// bindJSON decodes the body into req. Malformed JSON is a 400; struct
// validation failures are a 422 listing every invalid field.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	if details := middleware.FieldErrors(err); details != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(
			"Request validation failed", requestID(c), details,
		))
		return false
	}

	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &maxErr):
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	case errors.As(err, &typeErr):
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed", requestID(c),
			[]shared.FieldError{{Field: typeErr.Field, Message: "Must be a " + typeErr.Type.String()}},
		))
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	default:
		// decimal and uuid fields report their own parse errors
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
	}
	return false
}

// pathID parses the :id path parameter, answering 400 when it is not a UUID.
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Invalid path parameter", requestID(c),
			[]shared.FieldError{{Field: "id", Message: "Invalid UUID format", Value: raw}},
		))
		return uuid.Nil, false
	}
	return id, true
}

// respondList writes a list result in the pagination envelope.
func respondList[R any](h *BaseHandler, c *gin.Context, result *listing.Result[R], err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(result))
}

// respond writes data with status, or the error.
func respond[R any](h *BaseHandler, c *gin.Context, status int, data *R, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(status, dto.NewSuccessResponse(data))
}
