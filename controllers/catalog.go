package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/catalog
func (h *Handlers) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"types":       h.Catalog.Types(),
		"statuses":    h.Catalog.Statuses(),
		"locations":   h.Catalog.Locations(),
		"departments": h.Catalog.Departments(),
	})
}
