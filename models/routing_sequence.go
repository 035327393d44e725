package models

// RoutingSequence holds the last routing number issued for a document type.
type RoutingSequence struct {
	DocumentType string `gorm:"primaryKey;column:document_type;size:100" json:"document_type"`
	LastNo       int    `gorm:"column:last_no" json:"last_no"`
}

func (RoutingSequence) TableName() string {
	return "routing_sequences"
}
