package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"document-tracker-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoutingAllocator hands out per-type routing numbers from the routing_sequences table.
// Callers must pass the transaction that also writes the document so the sequence row
// lock is held until the document is committed.
type RoutingAllocator struct{}

func NewRoutingAllocator() *RoutingAllocator {
	return &RoutingAllocator{}
}

// Next returns the next routing number for docType and records it as issued.
func (a *RoutingAllocator) Next(ctx context.Context, tx *gorm.DB, docType string) (int, error) {
	tx = tx.WithContext(ctx)

	seq, err := lockSequence(tx, docType)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seed, seedErr := currentMaxRoutingNo(tx, docType)
		if seedErr != nil {
			return 0, seedErr
		}
		// A concurrent allocator may insert the row first; DoNothing keeps its value.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.RoutingSequence{DocumentType: docType, LastNo: seed}).Error; err != nil {
			return 0, fmt.Errorf("failed to seed routing sequence for %s: %w", docType, err)
		}
		seq, err = lockSequence(tx, docType)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock routing sequence for %s: %w", docType, err)
	}

	next := seq.LastNo + 1
	if err := tx.Model(&models.RoutingSequence{}).
		Where("document_type = ?", docType).
		Update("last_no", next).Error; err != nil {
		return 0, fmt.Errorf("failed to advance routing sequence for %s: %w", docType, err)
	}
	return next, nil
}

func lockSequence(tx *gorm.DB, docType string) (models.RoutingSequence, error) {
	var seq models.RoutingSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("document_type = ?", docType).
		Take(&seq).Error
	return seq, err
}

func currentMaxRoutingNo(tx *gorm.DB, docType string) (int, error) {
	var raw sql.NullString
	if err := tx.Model(&models.TrackedDocument{}).
		Select("MAX(routing_no)").
		Where("type = ? AND archived = ?", docType, false).
		Row().Scan(&raw); err != nil {
		return 0, fmt.Errorf("failed to read max routing number for %s: %w", docType, err)
	}
	return ParseRoutingMax(raw), nil
}

// ParseRoutingMax interprets a stored MAX(routing_no). Missing or corrupt values count as
// zero so numbering restarts at 1.
func ParseRoutingMax(raw sql.NullString) int {
	if !raw.Valid {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw.String))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
