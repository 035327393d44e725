package models

import "time"

// RemarkTypeSystem tags remarks generated by the application rather than typed by a user.
const RemarkTypeSystem = "system"

// Remark is an entry in a document's remarks thread.
type Remark struct {
	ID         int       `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DocumentID string    `gorm:"type:char(36);column:document_id;index" json:"document_id"`
	AuthorID   int       `gorm:"column:author_id" json:"author_id"`
	AuthorName string    `gorm:"column:author_name" json:"author_name"`
	Body       string    `gorm:"column:body;type:text" json:"body"`
	Type       *string   `gorm:"column:type;size:30" json:"type"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Remark) TableName() string {
	return "document_remarks"
}

// IsSystem reports whether the remark was generated by the application.
func (r Remark) IsSystem() bool {
	return r.Type != nil && *r.Type == RemarkTypeSystem
}

// Snapshot converts the remark into the denormalized recent_remarks form.
func (r Remark) Snapshot() *RemarkSnapshot {
	return &RemarkSnapshot{
		RemarkID:   r.ID,
		AuthorID:   r.AuthorID,
		AuthorName: r.AuthorName,
		Body:       r.Body,
		Type:       r.Type,
		CreatedAt:  r.CreatedAt,
	}
}
