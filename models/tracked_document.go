package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackedDocument is a routed office document (voucher, letter, ...) and its current custody.
type TrackedDocument struct {
	ID               string         `gorm:"type:char(36);primaryKey;column:id" json:"id"`
	Type             string         `gorm:"column:type;size:100;index:idx_tracked_documents_type" json:"type"`
	RoutingNo        int            `gorm:"column:routing_no" json:"routing_no"`
	RoutingSlipNo    string         `gorm:"column:routing_slip_no;size:50" json:"routing_slip_no"`
	Status           string         `gorm:"column:status;size:50" json:"status"`
	Location         string         `gorm:"column:location;size:150" json:"location"`
	OriginDepartment string         `gorm:"column:origin_department;size:150;index" json:"origin_department"`
	Requester        string         `gorm:"column:requester" json:"requester"`
	Agency           string         `gorm:"column:agency" json:"agency"`
	Amount           *string        `gorm:"column:amount;size:50" json:"amount"`
	Particulars      string         `gorm:"column:particulars;type:text" json:"particulars"`
	ContactNo        string         `gorm:"column:contact_no;size:50" json:"contact_no"`
	ChequeNo         string         `gorm:"column:cheque_no;size:100" json:"cheque_no"`
	Specify          string         `gorm:"column:specify" json:"specify"`
	DateReceived     string         `gorm:"column:date_received;size:10" json:"date_received"`
	ActivityDate     *string        `gorm:"column:activity_date;size:10" json:"activity_date"`
	Attachments      AttachmentList `gorm:"column:attachments;type:text" json:"attachments"`
	RecentRemarks    RecentRemark   `gorm:"column:recent_remarks;type:text" json:"recent_remarks"`
	Archived         bool           `gorm:"column:archived;default:false;index" json:"archived"`
	CreatedBy        int            `gorm:"column:created_by" json:"created_by"`
	CreatedAt        time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (TrackedDocument) TableName() string {
	return "tracked_documents"
}

// BeforeCreate assigns the opaque document id.
func (d *TrackedDocument) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// AttachmentList stores attachment storage keys as a JSON array.
type AttachmentList []string

func (a AttachmentList) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (a *AttachmentList) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		*a = AttachmentList{}
		return nil
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		return fmt.Errorf("decode attachments: %w", err)
	}
	*a = keys
	return nil
}

// RemarkSnapshot is the denormalized copy of a document's latest remark.
type RemarkSnapshot struct {
	RemarkID   int       `json:"remark_id"`
	AuthorID   int       `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	Type       *string   `json:"type,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecentRemark is the nullable recent_remarks column.
type RecentRemark struct {
	Snapshot *RemarkSnapshot
}

func (r RecentRemark) Value() (driver.Value, error) {
	if r.Snapshot == nil {
		return nil, nil
	}
	raw, err := json.Marshal(r.Snapshot)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (r *RecentRemark) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		r.Snapshot = nil
		return nil
	}
	var snapshot RemarkSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return fmt.Errorf("decode recent remarks: %w", err)
	}
	r.Snapshot = &snapshot
	return nil
}

func (r RecentRemark) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Snapshot)
}

func (r *RecentRemark) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		r.Snapshot = nil
		return nil
	}
	var snapshot RemarkSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return err
	}
	r.Snapshot = &snapshot
	return nil
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", value)
	}
}
