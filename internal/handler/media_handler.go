package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/minio/minio-go/v7"

	"elderease/internal/services"
)

type MediaHandler struct {
	service *services.MediaService
}

func NewMediaHandler(service *services.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) Upload(c *gin.Context) {
	var body struct {
		Base64 string `json:"base64" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base64 payload is required"})
		return
	}
	data, err := services.DecodeDataURL(body.Base64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid base64 payload"})
		return
	}
	id, err := h.service.Store(c.Request.Context(), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving upload"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *MediaHandler) Serve(c *gin.Context) {
	obj, size, contentType, err := h.service.Fetch(c.Request.Context(), c.Param("id"))
	if err != nil {
		if minio.ToErrorResponse(err).StatusCode == http.StatusNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer obj.Close()
	c.DataFromReader(http.StatusOK, size, contentType, obj, nil)
}
