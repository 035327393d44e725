package controllers

import (
	"net/http"
	"strings"

	"document-tracker-api/services"

	"github.com/gin-gonic/gin"
)

// GET /api/v1/documents?keyword=&status=&location=&agency=&date_from=&date_to=&forwarded_from=&forwarded_to=&archived=&page=&page_size=
func (h *Handlers) ListDocuments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	scope, err := h.Scope.Filter(actor.Department, c.Query("forwarded_from"), c.Query("forwarded_to"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.Query.List(ctx, services.ListFilter{
		Scope:           scope,
		Keyword:         c.Query("keyword"),
		Status:          c.Query("status"),
		Location:        c.Query("location"),
		Agency:          c.Query("agency"),
		DateFrom:        c.Query("date_from"),
		DateTo:          c.Query("date_to"),
		IncludeArchived: strings.EqualFold(c.Query("archived"), "true"),
		Page:            parsePOS(c.Query("page"), 1),
		PageSize:        parsePOS(c.Query("page_size"), 20),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      result.Items,
		"total":     result.Total,
		"page":      result.Page,
		"page_size": result.PageSize,
	})
}

// POST /api/v1/documents
func (h *Handlers) CreateDocument(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req services.DocumentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.Tracker.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": result})
}

// GET /api/v1/documents/:id
func (h *Handlers) GetDocument(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.authorizeDocument(c, actor, id) {
		return
	}

	doc, err := h.Tracker.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	status, _ := h.Catalog.Status(doc.Status)
	c.JSON(http.StatusOK, gin.H{"data": doc, "status_color": status.Color})
}

// PUT /api/v1/documents/:id
func (h *Handlers) UpdateDocument(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.authorizeDocument(c, actor, id) {
		return
	}
	var req services.DocumentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.Tracker.Edit(c.Request.Context(), actor, id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// PATCH /api/v1/documents/:id/status
func (h *Handlers) UpdateDocumentStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.authorizeDocument(c, actor, id) {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	result, err := h.Tracker.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// PATCH /api/v1/documents/:id/location
func (h *Handlers) UpdateDocumentLocation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.authorizeDocument(c, actor, id) {
		return
	}
	var req struct {
		Location string `json:"location" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location is required"})
		return
	}

	result, err := h.Tracker.UpdateLocation(c.Request.Context(), actor, id, req.Location)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// POST /api/v1/documents/:id/archive
func (h *Handlers) ArchiveDocument(c *gin.Context) {
	h.setArchived(c, true)
}

// POST /api/v1/documents/:id/unarchive
func (h *Handlers) UnarchiveDocument(c *gin.Context) {
	h.setArchived(c, false)
}

func (h *Handlers) setArchived(c *gin.Context, archived bool) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.authorizeDocument(c, actor, id) {
		return
	}

	var err error
	if archived {
		_, err = h.Tracker.Archive(c.Request.Context(), actor, id)
	} else {
		_, err = h.Tracker.Unarchive(c.Request.Context(), actor, id)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "archived": archived})
}

// GET /api/v1/documents/:id/route-logs
func (h *Handlers) GetRouteLogs(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.authorizeDocument(c, actor, id) {
		return
	}

	entries, err := h.Tracker.RouteLogs(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "total": len(entries)})
}

// POST /api/v1/documents/:id/attachments/presign
func (h *Handlers) PresignAttachment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	if h.Attachments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Attachment storage is not configured"})
		return
	}
	id := c.Param("id")
	if !h.authorizeDocument(c, actor, id) {
		return
	}
	var req struct {
		FileName string `json:"file_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_name is required"})
		return
	}

	upload, err := h.Attachments.PresignUpload(c.Request.Context(), id, req.FileName)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": upload})
}

// POST /api/v1/documents/:id/attachments
func (h *Handlers) AttachFiles(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if !h.authorizeDocument(c, actor, id) {
		return
	}
	var req struct {
		Keys []string `json:"keys" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keys are required"})
		return
	}

	result, err := h.Tracker.AttachFiles(c.Request.Context(), actor, id, req.Keys)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result.Document})
}

// GET /api/v1/scope
func (h *Handlers) GetScope(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	ids, err := h.Scope.Resolve(c.Request.Context(), actor.Department)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"department": actor.Department,
		"locations":  h.Catalog.LocationsOf(actor.Department),
		"ids":        ids,
	})
}
