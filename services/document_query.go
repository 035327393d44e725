package services

import (
	"context"
	"fmt"
	"strings"

	"document-tracker-api/config"
	"document-tracker-api/models"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListFilter narrows a scoped document listing. Scope, or failing that IDs, is the
// caller's access scope; with neither the listing is empty.
type ListFilter struct {
	Scope           *ScopeFilter
	IDs             []string
	Keyword         string
	Status          string
	Location        string
	Agency          string
	DateFrom        string
	DateTo          string
	IncludeArchived bool
	Page            int
	PageSize        int
}

type ListResult struct {
	Items    []models.TrackedDocument `json:"items"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
}

type DocumentQuery struct {
	db *gorm.DB
}

func NewDocumentQuery(db *gorm.DB) *DocumentQuery {
	if db == nil {
		db = config.DB
	}
	return &DocumentQuery{db: db}
}

func (q *DocumentQuery) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	db := q.db.WithContext(ctx)
	query := db.Model(&models.TrackedDocument{})
	switch {
	case filter.Scope != nil:
		query = filter.Scope.Apply(db, query)
	case len(filter.IDs) > 0:
		query = query.Where("id IN ?", filter.IDs)
	default:
		query = query.Where("id = ?", NoMatchID)
	}
	if !filter.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		like := "%" + kw + "%"
		query = query.Where("(routing_slip_no LIKE ? OR requester LIKE ? OR agency LIKE ? OR particulars LIKE ?)",
			like, like, like, like)
	}
	if v := strings.TrimSpace(filter.Status); v != "" {
		query = query.Where("status = ?", v)
	}
	if v := strings.TrimSpace(filter.Location); v != "" {
		query = query.Where("location = ?", v)
	}
	if v := strings.TrimSpace(filter.Agency); v != "" {
		query = query.Where("agency = ?", v)
	}
	if v := strings.TrimSpace(filter.DateFrom); v != "" {
		if err := validateDate("date_from", v); err != nil {
			return nil, err
		}
		query = query.Where("date_received >= ?", v)
	}
	if v := strings.TrimSpace(filter.DateTo); v != "" {
		if err := validateDate("date_to", v); err != nil {
			return nil, err
		}
		query = query.Where("date_received <= ?", v)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	var items []models.TrackedDocument
	if err := query.Order("date_received DESC, created_at DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return &ListResult{Items: items, Total: total, Page: page, PageSize: size}, nil
}
