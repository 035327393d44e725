package services

import (
	"strings"
	"time"

	"document-tracker-api/catalog"
	"document-tracker-api/models"
)

type trackableField struct {
	label string
	value func(*models.TrackedDocument) string
}

// trackableFields are diffed on every edit, in this order. Location is handled separately.
var trackableFields = []trackableField{
	{"Status", func(d *models.TrackedDocument) string { return d.Status }},
	{"Type", func(d *models.TrackedDocument) string { return d.Type }},
	{"Amount", func(d *models.TrackedDocument) string { return deref(d.Amount) }},
	{"Cheque Number", func(d *models.TrackedDocument) string { return d.ChequeNo }},
	{"Agency", func(d *models.TrackedDocument) string { return d.Agency }},
	{"Date Received", func(d *models.TrackedDocument) string { return d.DateReceived }},
	{"Activity Date", func(d *models.TrackedDocument) string { return deref(d.ActivityDate) }},
	{"Requester", func(d *models.TrackedDocument) string { return d.Requester }},
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

// EditPlan is what a mutation must record in the route log.
type EditPlan struct {
	Changes         models.ChangeSet
	LocationChanged bool
	TypeChanged     bool
	NewLocation     string
}

// PlanEdit compares original with updated. Any status or location may follow any other;
// a stricter transition policy belongs here.
func PlanEdit(original, updated *models.TrackedDocument) EditPlan {
	plan := EditPlan{NewLocation: updated.Location}
	for _, f := range trackableFields {
		before := strings.TrimSpace(f.value(original))
		after := strings.TrimSpace(f.value(updated))
		if before != after {
			plan.Changes = append(plan.Changes, models.FieldChange{Field: f.label, Before: before, After: after})
		}
	}
	plan.LocationChanged = strings.TrimSpace(original.Location) != strings.TrimSpace(updated.Location)
	plan.TypeChanged = strings.TrimSpace(original.Type) != strings.TrimSpace(updated.Type)
	return plan
}

// Entries returns the route log rows for the plan: the field diff first, then the
// location move. Both are written when both apply.
func (p EditPlan) Entries(documentID string, actor Actor, at time.Time) []models.RouteLog {
	var entries []models.RouteLog
	if len(p.Changes) > 0 {
		entries = append(entries, newRouteLog(documentID, catalog.DetailsUpdatedTitle, actor, at, p.Changes))
	}
	if p.LocationChanged {
		entries = append(entries, newRouteLog(documentID, p.NewLocation, actor, at, nil))
	}
	return entries
}

func newRouteLog(documentID, title string, actor Actor, at time.Time, changes models.ChangeSet) models.RouteLog {
	return models.RouteLog{
		DocumentID: documentID,
		LogDate:    at.Format(dateLayout),
		LogTime:    at.Format("15:04:05"),
		UserID:     actor.UserID,
		UserName:   actor.Name,
		Title:      title,
		Message:    changes,
	}
}
