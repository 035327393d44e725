package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"document-tracker-api/catalog"
	"document-tracker-api/config"
	"document-tracker-api/models"

	"gorm.io/gorm"
)

// NoMatchID is returned in place of an empty scope so that "id IN (...)" filters match
// nothing instead of being dropped.
const NoMatchID = "00000000-0000-0000-0000-000000000000"

// ScopeResolver computes which documents a department may see: those it originated and
// those whose route log ever reached one of its locations.
type ScopeResolver struct {
	db      *gorm.DB
	catalog *catalog.Catalog
	cache   ScopeCache
}

func NewScopeResolver(db *gorm.DB, cat *catalog.Catalog, cache ScopeCache) *ScopeResolver {
	if db == nil {
		db = config.DB
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &ScopeResolver{db: db, catalog: cat, cache: cache}
}

// Resolve returns the visible document ids for department, never an empty slice.
func (r *ScopeResolver) Resolve(ctx context.Context, department string) ([]string, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return []string{NoMatchID}, nil
	}
	generation := int64(-1)
	if r.cache != nil {
		ids, gen, ok := r.cache.Get(ctx, department)
		if ok {
			return ids, nil
		}
		generation = gen
	}

	ids, err := r.visibleIDs(ctx, department)
	if err != nil {
		return nil, err
	}
	ids = withSentinel(ids)
	if r.cache != nil {
		r.cache.Set(ctx, department, generation, ids)
	}
	return ids, nil
}

// ResolveWindow narrows Resolve to documents with a route log entry dated within
// [from, to]. Either bound may be empty.
func (r *ScopeResolver) ResolveWindow(ctx context.Context, department, from, to string) ([]string, error) {
	if strings.TrimSpace(from) == "" && strings.TrimSpace(to) == "" {
		return r.Resolve(ctx, department)
	}
	filter, err := r.Filter(department, from, to)
	if err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	var windowed []string
	if err := filter.Apply(db, db.Model(&models.TrackedDocument{})).
		Order("id").
		Pluck("id", &windowed).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve forwarded window: %w", err)
	}
	return withSentinel(windowed), nil
}

// ScopeFilter is a department scope expressed as subqueries, for listings whose
// visible set is too large to bind as an id list.
type ScopeFilter struct {
	Department    string
	Locations     []string
	ForwardedFrom string
	ForwardedTo   string
}

// Filter validates the forwarded window bounds and builds the scope filter for department.
func (r *ScopeResolver) Filter(department, from, to string) (*ScopeFilter, error) {
	filter := &ScopeFilter{
		Department:    strings.TrimSpace(department),
		ForwardedFrom: strings.TrimSpace(from),
		ForwardedTo:   strings.TrimSpace(to),
	}
	if filter.ForwardedFrom != "" {
		if err := validateDate("from", filter.ForwardedFrom); err != nil {
			return nil, err
		}
	}
	if filter.ForwardedTo != "" {
		if err := validateDate("to", filter.ForwardedTo); err != nil {
			return nil, err
		}
	}
	if filter.Department != "" {
		filter.Locations = r.catalog.LocationsOf(filter.Department)
	}
	return filter, nil
}

// Apply restricts q, a tracked_documents query, to the filter's scope. Subqueries are
// built from db.
func (f *ScopeFilter) Apply(db, q *gorm.DB) *gorm.DB {
	if f == nil || f.Department == "" {
		return q.Where("id = ?", NoMatchID)
	}
	if len(f.Locations) > 0 {
		routed := db.Model(&models.RouteLog{}).Select("document_id").Where("title IN ?", f.Locations)
		q = q.Where("(origin_department = ? OR id IN (?))", f.Department, routed)
	} else {
		q = q.Where("origin_department = ?", f.Department)
	}

	if f.ForwardedFrom == "" && f.ForwardedTo == "" {
		return q
	}
	window := db.Model(&models.RouteLog{}).Select("document_id")
	if f.ForwardedFrom != "" {
		window = window.Where("log_date >= ?", f.ForwardedFrom)
	}
	if f.ForwardedTo != "" {
		window = window.Where("log_date <= ?", f.ForwardedTo)
	}
	return q.Where("id IN (?)", window)
}

// CanView reports whether department may open the document with the given id.
func (r *ScopeResolver) CanView(ctx context.Context, department, id string) (bool, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return false, nil
	}
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.TrackedDocument{}).
		Where("id = ? AND origin_department = ?", id, department).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check document origin: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	locations := r.catalog.LocationsOf(department)
	if len(locations) == 0 {
		return false, nil
	}
	if err := db.Model(&models.RouteLog{}).
		Where("document_id = ? AND title IN ?", id, locations).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check routing history: %w", err)
	}
	return count > 0, nil
}

func (r *ScopeResolver) visibleIDs(ctx context.Context, department string) ([]string, error) {
	db := r.db.WithContext(ctx)

	var origin []string
	if err := db.Model(&models.TrackedDocument{}).
		Where("origin_department = ?", department).
		Pluck("id", &origin).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve originated documents: %w", err)
	}

	var routed []string
	if locations := r.catalog.LocationsOf(department); len(locations) > 0 {
		if err := db.Model(&models.RouteLog{}).
			Where("title IN ?", locations).
			Distinct().
			Pluck("document_id", &routed).Error; err != nil {
			return nil, fmt.Errorf("failed to resolve routed documents: %w", err)
		}
	}

	return unionIDs(origin, routed), nil
}

func unionIDs(sets ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, set := range sets {
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func withSentinel(ids []string) []string {
	if len(ids) == 0 {
		return []string{NoMatchID}
	}
	return ids
}
