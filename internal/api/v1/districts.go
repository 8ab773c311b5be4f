package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CreateDistrictRequest 创建学区请求
type CreateDistrictRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateDistrict 创建学区
// POST /api/districts
func (h *Handler) CreateDistrict(c *gin.Context) {
	var req CreateDistrictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Slug) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and slug are required"})
		return
	}

	district, err := h.store.CreateDistrict(req.Name, req.Slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, district)
}

// ListDistricts 列出全部学区
// GET /api/districts
func (h *Handler) ListDistricts(c *gin.Context) {
	districts, err := h.store.ListDistricts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, districts)
}
