package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type remarkRequest struct {
	Body string `json:"body" binding:"required"`
}

// GET /api/v1/documents/:id/remarks
func (h *Handlers) ListRemarks(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.authorizeDocument(c, actor, id) {
		return
	}

	remarks, err := h.Remarks.List(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": remarks, "total": len(remarks)})
}

// POST /api/v1/documents/:id/remarks
func (h *Handlers) AddRemark(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.authorizeDocument(c, actor, id) {
		return
	}
	var req remarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Remark body is required"})
		return
	}

	remark, err := h.Remarks.Add(c.Request.Context(), actor, id, req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": remark})
}

// PUT /api/v1/remarks/:id
func (h *Handlers) EditRemark(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	remarkID, err := strconv.Atoi(c.Param("id"))
	if err != nil || remarkID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid remark ID"})
		return
	}
	var req remarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Remark body is required"})
		return
	}

	remark, err := h.Remarks.Edit(c.Request.Context(), actor, remarkID, req.Body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": remark})
}

// DELETE /api/v1/remarks/:id
func (h *Handlers) DeleteRemark(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	remarkID, err := strconv.Atoi(c.Param("id"))
	if err != nil || remarkID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid remark ID"})
		return
	}

	if err := h.Remarks.Delete(c.Request.Context(), actor, remarkID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
