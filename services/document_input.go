package services

import (
	"strconv"
	"strings"
	"time"

	"document-tracker-api/catalog"
)

const dateLayout = "2006-01-02"

// DocumentInput is the editable field set of a tracked document.
type DocumentInput struct {
	Type         string   `json:"type"`
	Status       string   `json:"status"`
	Location     string   `json:"location"`
	Requester    string   `json:"requester"`
	Agency       string   `json:"agency"`
	Amount       *string  `json:"amount"`
	Particulars  string   `json:"particulars"`
	ContactNo    string   `json:"contact_no"`
	ChequeNo     string   `json:"cheque_no"`
	Specify      string   `json:"specify"`
	DateReceived string   `json:"date_received"`
	ActivityDate *string  `json:"activity_date"`
	Attachments  []string `json:"attachments"`
}

func (in DocumentInput) normalized() DocumentInput {
	out := in
	out.Type = strings.TrimSpace(in.Type)
	out.Status = strings.TrimSpace(in.Status)
	out.Location = strings.TrimSpace(in.Location)
	out.Requester = strings.TrimSpace(in.Requester)
	out.Agency = strings.TrimSpace(in.Agency)
	out.Amount = trimmedPtr(in.Amount)
	out.Particulars = strings.TrimSpace(in.Particulars)
	out.ContactNo = strings.TrimSpace(in.ContactNo)
	out.ChequeNo = strings.TrimSpace(in.ChequeNo)
	out.Specify = strings.TrimSpace(in.Specify)
	out.DateReceived = strings.TrimSpace(in.DateReceived)
	out.ActivityDate = trimmedPtr(in.ActivityDate)
	return out
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func validateDocumentInput(cat *catalog.Catalog, in DocumentInput) error {
	required := []struct {
		field string
		value string
	}{
		{"type", in.Type},
		{"location", in.Location},
		{"status", in.Status},
		{"agency", in.Agency},
		{"particulars", in.Particulars},
		{"date_received", in.DateReceived},
	}
	for _, r := range required {
		if r.value == "" {
			return invalid(r.field, "is required")
		}
	}

	if _, ok := cat.DocumentType(in.Type); !ok {
		return invalid("type", "unknown document type")
	}
	if _, ok := cat.Status(in.Status); !ok {
		return invalid("status", "unknown status")
	}
	if _, ok := cat.Location(in.Location); !ok {
		return invalid("location", "unknown location")
	}
	if err := validateDate("date_received", in.DateReceived); err != nil {
		return err
	}
	if in.ActivityDate != nil {
		if err := validateDate("activity_date", *in.ActivityDate); err != nil {
			return err
		}
	}
	if in.Amount != nil {
		if _, err := strconv.ParseFloat(strings.ReplaceAll(*in.Amount, ",", ""), 64); err != nil {
			return invalid("amount", "must be numeric")
		}
	}
	return nil
}

func validateDate(field, value string) error {
	if _, err := time.Parse(dateLayout, value); err != nil {
		return invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return nil
}
