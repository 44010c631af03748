package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"elderease/internal/models"
	"elderease/internal/services"
	"elderease/internal/utils"
)

type UserHandler struct {
	service *services.RatingService
}

func NewUserHandler(service *services.RatingService) *UserHandler {
	return &UserHandler{service: service}
}

type rateRequest struct {
	Rating float64 `json:"rating" validate:"required,gte=1,lte=5"`
	TaskID string  `json:"taskId" validate:"required"`
}

func (h *UserHandler) RateUser(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := utils.GetValidator().Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.service.RateUser(c.Request.Context(), c.Param("id"), req.Rating, req.TaskID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) || errors.Is(err, models.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User or task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}
