package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"document-tracker-api/catalog"
	"document-tracker-api/middleware"
	"document-tracker-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers wires the HTTP endpoints to the document tracker services.
type Handlers struct {
	DB          *gorm.DB
	Tracker     *services.TrackerService
	Remarks     *services.RemarkService
	Scope       *services.ScopeResolver
	Query       *services.DocumentQuery
	Attachments services.AttachmentStorage
	Catalog     *catalog.Catalog
	Logger      *zap.Logger
	JWTSecret   []byte
	TokenTTL    int // hours
}

func currentActor(c *gin.Context) (services.Actor, bool) {
	userID := c.GetInt(middleware.ContextUserID)
	department := c.GetString(middleware.ContextDepartment)
	if userID <= 0 || department == "" {
		return services.Actor{}, false
	}
	return services.Actor{
		UserID:     userID,
		Name:       c.GetString(middleware.ContextUserName),
		Department: department,
	}, true
}

// requireActor writes 401 and returns false when the request has no acting user.
func requireActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := currentActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User context missing"})
	}
	return actor, ok
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
	case errors.Is(err, services.ErrDocumentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
	case errors.Is(err, services.ErrRemarkNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Remark not found"})
	case errors.Is(err, services.ErrNotRemarkAuthor), errors.Is(err, services.ErrRemarkReadOnly):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		h.Logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process request"})
	}
}

// authorizeDocument answers 404 when the actor's department cannot see document id.
func (h *Handlers) authorizeDocument(c *gin.Context, actor services.Actor, id string) bool {
	ok, err := h.Scope.CanView(c.Request.Context(), actor.Department, id)
	if err != nil {
		h.respondError(c, err)
		return false
	}
	if !ok {
		h.respondError(c, services.ErrDocumentNotFound)
		return false
	}
	return true
}

func parsePOS(q string, def int) int {
	if q == "" {
		return def
	}
	n, err := strconv.Atoi(q)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
