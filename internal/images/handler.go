package images

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Pipeline *Pipeline
}

func NewHandler(p *Pipeline) *Handler {
	return &Handler{Pipeline: p}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/process", h.process)
}

type processReq struct {
	ImageURL string `json:"image_url"`
	Title    string `json:"title"`
}

func (h *Handler) process(c *gin.Context) {
	var req processReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if strings.TrimSpace(req.ImageURL) == "" || strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_url and title required"})
		return
	}

	result, err := h.Pipeline.Process(c.Request.Context(), req.ImageURL, req.Title)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "image processing failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
