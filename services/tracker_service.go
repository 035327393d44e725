package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"document-tracker-api/catalog"
	"document-tracker-api/config"
	"document-tracker-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TrackerService creates and mutates tracked documents. Every mutation writes the
// document row and its route log entries in a single transaction.
type TrackerService struct {
	db        *gorm.DB
	catalog   *catalog.Catalog
	allocator *RoutingAllocator
	notifier  RoutingNotifier
	cache     ScopeCache
	logger    *zap.Logger
	now       func() time.Time
	spawn     func(func())
}

type TrackerOption func(*TrackerService)

func WithCatalog(c *catalog.Catalog) TrackerOption {
	return func(s *TrackerService) { s.catalog = c }
}

func WithNotifier(n RoutingNotifier) TrackerOption {
	return func(s *TrackerService) { s.notifier = n }
}

func WithScopeCache(c ScopeCache) TrackerOption {
	return func(s *TrackerService) { s.cache = c }
}

func WithLogger(l *zap.Logger) TrackerOption {
	return func(s *TrackerService) { s.logger = l }
}

func WithClock(now func() time.Time) TrackerOption {
	return func(s *TrackerService) { s.now = now }
}

func NewTrackerService(db *gorm.DB, opts ...TrackerOption) *TrackerService {
	if db == nil {
		db = config.DB
	}
	s := &TrackerService{
		db:        db,
		catalog:   catalog.Default(),
		allocator: NewRoutingAllocator(),
		logger:    config.Logger,
		now:       time.Now,
		spawn:     func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MutationResult is a document after a mutation and the route log entries it produced.
type MutationResult struct {
	Document *models.TrackedDocument `json:"document"`
	Entries  []models.RouteLog       `json:"route_logs"`
}

// Create validates input, allocates a routing number and stores the document with its
// initial route log entry.
func (s *TrackerService) Create(ctx context.Context, actor Actor, input DocumentInput) (*MutationResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	in := input.normalized()
	if err := validateDocumentInput(s.catalog, in); err != nil {
		return nil, err
	}
	if len(in.Attachments) > 0 {
		return nil, invalid("attachments", "upload attachments after the document is created")
	}

	now := s.now()
	doc := &models.TrackedDocument{
		Type:             in.Type,
		Status:           in.Status,
		Location:         in.Location,
		OriginDepartment: strings.TrimSpace(actor.Department),
		Requester:        in.Requester,
		Agency:           in.Agency,
		Amount:           in.Amount,
		Particulars:      in.Particulars,
		ContactNo:        in.ContactNo,
		ChequeNo:         in.ChequeNo,
		Specify:          in.Specify,
		DateReceived:     in.DateReceived,
		ActivityDate:     in.ActivityDate,
		Attachments:      models.AttachmentList{},
		CreatedBy:        actor.UserID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	entry := models.RouteLog{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		no, err := s.allocator.Next(ctx, tx, doc.Type)
		if err != nil {
			return err
		}
		if err := s.assignRoutingNo(doc, no); err != nil {
			return err
		}
		if err := tx.Create(doc).Error; err != nil {
			return fmt.Errorf("failed to create document: %w", err)
		}
		entry = newRouteLog(doc.ID, doc.Location, actor, now, nil)
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to write route log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		zap.String("document_id", doc.ID),
		zap.String("routing_slip_no", doc.RoutingSlipNo),
		zap.Int("user_id", actor.UserID))
	s.afterMutation(ctx, actor, doc, true)
	return &MutationResult{Document: doc, Entries: []models.RouteLog{entry}}, nil
}

// Edit replaces the document's editable fields. Changed trackable fields produce one
// "Details updated" entry; a location change produces its own entry.
func (s *TrackerService) Edit(ctx context.Context, actor Actor, id string, input DocumentInput) (*MutationResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	in := input.normalized()
	if err := validateDocumentInput(s.catalog, in); err != nil {
		return nil, err
	}
	if err := validateAttachmentKeys(id, in.Attachments); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, id, func(doc *models.TrackedDocument) {
		doc.Type = in.Type
		doc.Status = in.Status
		doc.Location = in.Location
		doc.Requester = in.Requester
		doc.Agency = in.Agency
		doc.Amount = in.Amount
		doc.Particulars = in.Particulars
		doc.ContactNo = in.ContactNo
		doc.ChequeNo = in.ChequeNo
		doc.Specify = in.Specify
		doc.DateReceived = in.DateReceived
		doc.ActivityDate = in.ActivityDate
		doc.Attachments = mergeAttachments(doc.Attachments, in.Attachments)
	})
}

// UpdateStatus is the quick status action.
func (s *TrackerService) UpdateStatus(ctx context.Context, actor Actor, id, status string) (*MutationResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	status = strings.TrimSpace(status)
	if _, ok := s.catalog.Status(status); !ok {
		return nil, invalid("status", "unknown status")
	}
	return s.mutate(ctx, actor, id, func(doc *models.TrackedDocument) {
		doc.Status = status
	})
}

// UpdateLocation is the quick routing action.
func (s *TrackerService) UpdateLocation(ctx context.Context, actor Actor, id, location string) (*MutationResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	location = strings.TrimSpace(location)
	if _, ok := s.catalog.Location(location); !ok {
		return nil, invalid("location", "unknown location")
	}
	return s.mutate(ctx, actor, id, func(doc *models.TrackedDocument) {
		doc.Location = location
	})
}

// AttachFiles adds stored attachment keys to the document. Attachments are not tracked
// in the route log.
func (s *TrackerService) AttachFiles(ctx context.Context, actor Actor, id string, keys []string) (*MutationResult, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if err := validateAttachmentKeys(id, keys); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, id, func(doc *models.TrackedDocument) {
		doc.Attachments = mergeAttachments(doc.Attachments, keys)
	})
}

// Archive hides the document from default listings. No route log entry is written.
func (s *TrackerService) Archive(ctx context.Context, actor Actor, id string) (*models.TrackedDocument, error) {
	return s.setArchived(ctx, actor, id, true)
}

func (s *TrackerService) Unarchive(ctx context.Context, actor Actor, id string) (*models.TrackedDocument, error) {
	return s.setArchived(ctx, actor, id, false)
}

func (s *TrackerService) setArchived(ctx context.Context, actor Actor, id string, archived bool) (*models.TrackedDocument, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	var doc models.TrackedDocument
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		doc, err = lockDocument(tx, id)
		if err != nil {
			return err
		}
		doc.Archived = archived
		doc.UpdatedAt = s.now()
		if err := tx.Model(&models.TrackedDocument{}).Where("id = ?", id).
			Updates(map[string]interface{}{"archived": archived, "updated_at": doc.UpdatedAt}).Error; err != nil {
			return fmt.Errorf("failed to archive document: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("document archive flag changed",
		zap.String("document_id", id),
		zap.Bool("archived", archived),
		zap.Int("user_id", actor.UserID))
	return &doc, nil
}

// Get returns a document by id, archived or not.
func (s *TrackerService) Get(ctx context.Context, id string) (*models.TrackedDocument, error) {
	var doc models.TrackedDocument
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return &doc, nil
}

// RouteLogs returns the document's route log in insertion order.
func (s *TrackerService) RouteLogs(ctx context.Context, id string) ([]models.RouteLog, error) {
	var entries []models.RouteLog
	if err := s.db.WithContext(ctx).
		Where("document_id = ?", id).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load route log: %w", err)
	}
	return entries, nil
}

func (s *TrackerService) mutate(ctx context.Context, actor Actor, id string, apply func(*models.TrackedDocument)) (*MutationResult, error) {
	var (
		updated models.TrackedDocument
		entries []models.RouteLog
		plan    EditPlan
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		original, err := lockDocument(tx, id)
		if err != nil {
			return err
		}
		updated = original
		updated.Attachments = append(models.AttachmentList(nil), original.Attachments...)
		apply(&updated)

		plan = PlanEdit(&original, &updated)
		now := s.now()
		if plan.TypeChanged {
			no, err := s.allocator.Next(ctx, tx, updated.Type)
			if err != nil {
				return err
			}
			if err := s.assignRoutingNo(&updated, no); err != nil {
				return err
			}
		}
		updated.UpdatedAt = now

		if err := tx.Model(&models.TrackedDocument{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"type":            updated.Type,
				"routing_no":      updated.RoutingNo,
				"routing_slip_no": updated.RoutingSlipNo,
				"status":          updated.Status,
				"location":        updated.Location,
				"requester":       updated.Requester,
				"agency":          updated.Agency,
				"amount":          updated.Amount,
				"particulars":     updated.Particulars,
				"contact_no":      updated.ContactNo,
				"cheque_no":       updated.ChequeNo,
				"specify":         updated.Specify,
				"date_received":   updated.DateReceived,
				"activity_date":   updated.ActivityDate,
				"attachments":     updated.Attachments,
				"updated_at":      now,
			}).Error; err != nil {
			return fmt.Errorf("failed to update document: %w", err)
		}

		entries = plan.Entries(id, actor, now)
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return fmt.Errorf("failed to write route log: %w", err)
			}
		}

		if plan.TypeChanged {
			systemType := models.RemarkTypeSystem
			remark := &models.Remark{
				DocumentID: id,
				AuthorID:   actor.UserID,
				AuthorName: actor.Name,
				Body:       fmt.Sprintf("Category updated from %s to %s", original.Type, updated.Type),
				Type:       &systemType,
			}
			if err := appendRemark(tx, remark, now); err != nil {
				return err
			}
			updated.RecentRemarks = models.RecentRemark{Snapshot: remark.Snapshot()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(entries) > 0 {
		s.logger.Info("document updated",
			zap.String("document_id", id),
			zap.Int("route_log_entries", len(entries)),
			zap.Int("user_id", actor.UserID))
	}
	s.afterMutation(ctx, actor, &updated, plan.LocationChanged)
	return &MutationResult{Document: &updated, Entries: entries}, nil
}

func (s *TrackerService) assignRoutingNo(doc *models.TrackedDocument, no int) error {
	slip, err := s.catalog.SlipNumber(doc.Type, no)
	if err != nil {
		return invalid("type", err.Error())
	}
	doc.RoutingNo = no
	doc.RoutingSlipNo = slip
	return nil
}

// afterMutation runs post-commit side effects. Their failures are logged, never returned:
// the mutation itself has already been committed.
func (s *TrackerService) afterMutation(ctx context.Context, actor Actor, doc *models.TrackedDocument, routed bool) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if !routed || s.notifier == nil {
		return
	}
	snapshot := *doc
	notifyCtx := persistentContext(ctx)
	s.spawn(func() {
		if err := s.notifier.DocumentRouted(notifyCtx, snapshot, actor); err != nil {
			s.logger.Warn("routing notification failed",
				zap.String("document_id", snapshot.ID),
				zap.String("location", snapshot.Location),
				zap.Error(err))
		}
	})
}

// validateAttachmentKeys rejects keys outside the document's storage prefix.
func validateAttachmentKeys(documentID string, keys []string) error {
	prefix := AttachmentPrefix(documentID)
	for _, key := range keys {
		if !strings.HasPrefix(strings.TrimSpace(key), prefix) {
			return invalid("attachments", "key does not belong to this document")
		}
	}
	return nil
}

func mergeAttachments(existing models.AttachmentList, keys []string) models.AttachmentList {
	out := append(models.AttachmentList{}, existing...)
	seen := make(map[string]struct{}, len(out))
	for _, key := range out {
		seen[key] = struct{}{}
	}
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
