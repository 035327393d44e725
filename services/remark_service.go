package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"document-tracker-api/config"
	"document-tracker-api/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RemarkService manages a document's remarks thread and keeps the document's
// recent_remarks snapshot pointing at the latest entry.
type RemarkService struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewRemarkService(db *gorm.DB) *RemarkService {
	if db == nil {
		db = config.DB
	}
	return &RemarkService{db: db, logger: config.Logger, now: time.Now}
}

// Add appends a user remark.
func (s *RemarkService) Add(ctx context.Context, actor Actor, documentID, body string) (*models.Remark, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, invalid("body", "is required")
	}
	if actor.UserID <= 0 {
		return nil, invalid("actor", "user id is required")
	}

	remark := &models.Remark{
		DocumentID: documentID,
		AuthorID:   actor.UserID,
		AuthorName: actor.Name,
		Body:       body,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockDocument(tx, documentID); err != nil {
			return err
		}
		return appendRemark(tx, remark, s.now())
	})
	if err != nil {
		return nil, err
	}
	return remark, nil
}

// Edit replaces the body of the actor's own remark.
func (s *RemarkService) Edit(ctx context.Context, actor Actor, remarkID int, body string) (*models.Remark, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, invalid("body", "is required")
	}

	var remark models.Remark
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		remark, err = loadOwnRemark(tx, actor, remarkID)
		if err != nil {
			return err
		}
		if _, err := lockDocument(tx, remark.DocumentID); err != nil {
			return err
		}

		remark.Body = body
		remark.UpdatedAt = s.now()
		if err := tx.Model(&models.Remark{}).Where("id = ?", remark.ID).
			Updates(map[string]interface{}{"body": remark.Body, "updated_at": remark.UpdatedAt}).Error; err != nil {
			return fmt.Errorf("failed to update remark: %w", err)
		}

		latest, err := latestRemark(tx, remark.DocumentID)
		if err != nil {
			return err
		}
		if latest != nil && latest.ID == remark.ID {
			return setRecentRemark(tx, remark.DocumentID, latest)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &remark, nil
}

// Delete removes the actor's own remark and re-points recent_remarks at whatever entry
// is now the latest.
func (s *RemarkService) Delete(ctx context.Context, actor Actor, remarkID int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		remark, err := loadOwnRemark(tx, actor, remarkID)
		if err != nil {
			return err
		}
		if _, err := lockDocument(tx, remark.DocumentID); err != nil {
			return err
		}
		if err := tx.Where("id = ?", remark.ID).Delete(&models.Remark{}).Error; err != nil {
			return fmt.Errorf("failed to delete remark: %w", err)
		}
		latest, err := latestRemark(tx, remark.DocumentID)
		if err != nil {
			return err
		}
		return setRecentRemark(tx, remark.DocumentID, latest)
	})
}

// List returns a document's remarks oldest first.
func (s *RemarkService) List(ctx context.Context, documentID string) ([]models.Remark, error) {
	var remarks []models.Remark
	if err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC, id ASC").
		Find(&remarks).Error; err != nil {
		return nil, fmt.Errorf("failed to list remarks: %w", err)
	}
	return remarks, nil
}

// Reconcile rewrites every recent_remarks snapshot that no longer matches the latest
// remark. It returns the number of documents corrected.
func (s *RemarkService) Reconcile(ctx context.Context) (int, error) {
	var documents []models.TrackedDocument
	fixed := 0
	result := s.db.WithContext(ctx).
		Select("id").
		FindInBatches(&documents, 200, func(batch *gorm.DB, _ int) error {
			for _, doc := range documents {
				if err := ctx.Err(); err != nil {
					return err
				}
				repaired, err := s.reconcileDocument(ctx, doc.ID)
				if err != nil {
					return err
				}
				if repaired {
					fixed++
					s.logger.Info("recent remarks reconciled", zap.String("document_id", doc.ID))
				}
			}
			return nil
		})
	if result.Error != nil {
		return fixed, fmt.Errorf("failed to reconcile recent remarks: %w", result.Error)
	}
	return fixed, nil
}

// reconcileDocument compares and rewrites one snapshot under the document row lock, so
// a remark added concurrently is either seen here or written after this commits.
func (s *RemarkService) reconcileDocument(ctx context.Context, documentID string) (bool, error) {
	repaired := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := lockDocument(tx, documentID)
		if errors.Is(err, ErrDocumentNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		latest, err := latestRemark(tx, documentID)
		if err != nil {
			return err
		}
		if snapshotMatches(doc.RecentRemarks.Snapshot, latest) {
			return nil
		}
		if err := setRecentRemark(tx, documentID, latest); err != nil {
			return err
		}
		repaired = true
		return nil
	})
	return repaired, err
}

func snapshotMatches(snapshot *models.RemarkSnapshot, latest *models.Remark) bool {
	if snapshot == nil || latest == nil {
		return snapshot == nil && latest == nil
	}
	return snapshot.RemarkID == latest.ID && snapshot.Body == latest.Body
}

func loadOwnRemark(tx *gorm.DB, actor Actor, remarkID int) (models.Remark, error) {
	var remark models.Remark
	if err := tx.Where("id = ?", remarkID).Take(&remark).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return remark, ErrRemarkNotFound
		}
		return remark, fmt.Errorf("failed to load remark: %w", err)
	}
	if remark.IsSystem() {
		return remark, ErrRemarkReadOnly
	}
	if remark.AuthorID != actor.UserID {
		return remark, ErrNotRemarkAuthor
	}
	return remark, nil
}

// appendRemark inserts remark and makes it the document's recent remark. The caller
// holds the document row lock.
func appendRemark(tx *gorm.DB, remark *models.Remark, at time.Time) error {
	remark.CreatedAt = at
	remark.UpdatedAt = at
	if err := tx.Create(remark).Error; err != nil {
		return fmt.Errorf("failed to create remark: %w", err)
	}
	return setRecentRemark(tx, remark.DocumentID, remark)
}

func latestRemark(tx *gorm.DB, documentID string) (*models.Remark, error) {
	var remark models.Remark
	err := tx.Where("document_id = ?", documentID).
		Order("created_at DESC, id DESC").
		Take(&remark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest remark: %w", err)
	}
	return &remark, nil
}

func setRecentRemark(tx *gorm.DB, documentID string, remark *models.Remark) error {
	value := models.RecentRemark{}
	if remark != nil {
		value.Snapshot = remark.Snapshot()
	}
	if err := tx.Model(&models.TrackedDocument{}).
		Where("id = ?", documentID).
		Update("recent_remarks", value).Error; err != nil {
		return fmt.Errorf("failed to update recent remarks: %w", err)
	}
	return nil
}

func lockDocument(tx *gorm.DB, documentID string) (models.TrackedDocument, error) {
	var doc models.TrackedDocument
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", documentID).
		Take(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return doc, ErrDocumentNotFound
		}
		return doc, fmt.Errorf("failed to load document: %w", err)
	}
	return doc, nil
}
