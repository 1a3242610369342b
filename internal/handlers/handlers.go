package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/example/calc-vision/internal/usecase"
)

const (
	invalidBodyMessage  = "Invalid request body"
	bodyTooLargeMessage = "Request body too large"
)

// Processor runs one image submission.
type Processor interface {
	Process(ctx context.Context, sub usecase.Submission) (*usecase.Result, error)
}

type calculateRequest struct {
	Image      *string                    `json:"image" binding:"required"`
	DictOfVars map[string]json.RawMessage `json:"dict_of_vars" binding:"required"`
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, uc Processor) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	calculate := router.Group("/calculate")
	calculate.POST("", func(c *gin.Context) {
		var req calculateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			_ = c.Error(err)
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"detail": bodyTooLargeMessage})
				return
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": invalidBodyMessage})
			return
		}

		result, err := uc.Process(c.Request.Context(), usecase.Submission{
			Image: *req.Image,
			Vars:  req.DictOfVars,
		})
		if err != nil {
			_ = c.Error(err)
			status, detail := errorResponse(err)
			c.JSON(status, gin.H{"detail": detail})
			return
		}

		c.JSON(http.StatusOK, result)
	})
}

// errorResponse never exposes the cause; anything that is not an input
// error is reported as a processing failure.
func errorResponse(err error) (int, string) {
	var inputErr *usecase.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest, usecase.InvalidImageMessage
	}
	return http.StatusInternalServerError, usecase.ProcessingErrorMessage
}
