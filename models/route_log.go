package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FieldChange is one {field, before, after} record of a "Details updated" entry.
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// ChangeSet is the ordered list of changes carried in a route log message.
// An empty set is stored as NULL.
type ChangeSet []FieldChange

func (c ChangeSet) Value() (driver.Value, error) {
	if len(c) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal([]FieldChange(c))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (c *ChangeSet) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		*c = nil
		return nil
	}
	var changes []FieldChange
	if err := json.Unmarshal(raw, &changes); err != nil {
		return fmt.Errorf("decode route log message: %w", err)
	}
	*c = changes
	return nil
}

// RouteLog is an append-only routing history entry. Entries are never updated or deleted.
type RouteLog struct {
	ID         int       `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	DocumentID string    `gorm:"type:char(36);column:document_id;index" json:"document_id"`
	LogDate    string    `gorm:"column:log_date;size:10;index" json:"date"`
	LogTime    string    `gorm:"column:log_time;size:8" json:"time"`
	UserID     int       `gorm:"column:user_id" json:"user_id"`
	UserName   string    `gorm:"column:user_name" json:"user_name"`
	Title      string    `gorm:"column:title;size:150;index" json:"title"`
	Message    ChangeSet `gorm:"column:message;type:text" json:"message"`
}

func (RouteLog) TableName() string {
	return "route_logs"
}
