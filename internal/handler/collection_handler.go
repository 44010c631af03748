package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"elderease/internal/models"
	"elderease/internal/repository"
)

// CollectionHandler is the generic document-store surface. It is mounted as
// the router's NoRoute fallback, so every bespoke route takes priority and
// any other /<collection> or /<collection>/<id> path lands here.
type CollectionHandler struct {
	repo *repository.CollectionRepository
}

func NewCollectionHandler(repo *repository.CollectionRepository) *CollectionHandler {
	return &CollectionHandler{repo: repo}
}

func (h *CollectionHandler) Fallback(c *gin.Context) {
	parts := strings.Split(strings.Trim(c.Request.URL.Path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		switch c.Request.Method {
		case http.MethodGet:
			h.list(c, parts[0])
			return
		case http.MethodPost:
			h.create(c, parts[0])
			return
		}
	case len(parts) == 2:
		switch c.Request.Method {
		case http.MethodGet:
			h.get(c, parts[0], parts[1])
			return
		case http.MethodPatch:
			h.update(c, parts[0], parts[1])
			return
		case http.MethodPut:
			h.replace(c, parts[0], parts[1])
			return
		case http.MethodDelete:
			h.delete(c, parts[0], parts[1])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}

// list treats every query parameter as an equality filter
// (?userId=abc, ?archived=true, ...).
func (h *CollectionHandler) list(c *gin.Context, name string) {
	filter := map[string]string{}
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			filter[key] = values[0]
		}
	}
	docs, err := h.repo.List(c.Request.Context(), name, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]bson.M, 0, len(docs))
	for _, doc := range docs {
		out = append(out, renderDoc(doc))
	}
	c.JSON(http.StatusOK, out)
}

func (h *CollectionHandler) get(c *gin.Context, name, id string) {
	doc, err := h.repo.Get(c.Request.Context(), name, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderDoc(doc))
}

func (h *CollectionHandler) create(c *gin.Context, name string) {
	var doc bson.M
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	created, err := h.repo.Create(c.Request.Context(), name, doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, renderDoc(created))
}

func (h *CollectionHandler) update(c *gin.Context, name, id string) {
	var fields bson.M
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := h.repo.Update(c.Request.Context(), name, id, fields); err != nil {
		h.respondError(c, err)
		return
	}
	doc, err := h.repo.Get(c.Request.Context(), name, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderDoc(doc))
}

func (h *CollectionHandler) replace(c *gin.Context, name, id string) {
	var doc bson.M
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := h.repo.Replace(c.Request.Context(), name, id, doc); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, renderDoc(doc))
}

func (h *CollectionHandler) delete(c *gin.Context, name, id string) {
	if err := h.repo.Delete(c.Request.Context(), name, id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *CollectionHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrDocumentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// renderDoc mirrors the store key into the json "id" field.
func renderDoc(doc bson.M) bson.M {
	if id, ok := doc["_id"]; ok {
		doc["id"] = id
		delete(doc, "_id")
	}
	return doc
}
