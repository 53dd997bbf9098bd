package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/materials-console/internal/domain/enum"
	"gorm.io/gorm"
)

// SubmissionRecord is the console's ledger entry for one confirmed draft
// forwarded to the business API. The idempotency key is the one generated
// when the draft was confirmed.
type SubmissionRecord struct {
	ID              uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	IdempotencyKey  string                `gorm:"size:64;uniqueIndex;not null" json:"idempotency_key"`
	OwnerID         uuid.UUID             `gorm:"type:uuid;not null;index" json:"owner_id"`
	DraftID         uuid.UUID             `gorm:"type:uuid;not null;index" json:"draft_id"`
	TransactionType enum.TransactionType  `gorm:"not null" json:"transaction_type"`
	Endpoint        string                `gorm:"size:255;not null" json:"endpoint"`
	RequestBody     string                `gorm:"type:text" json:"-"`
	Status          enum.SubmissionStatus `gorm:"default:0;index" json:"status"`
	Attempts        int                   `gorm:"default:0" json:"attempts"`
	ResponseCode    int                   `json:"response_code"`
	ResponseBody    string                `gorm:"type:text" json:"-"`
	TransactionID   string                `gorm:"size:100;index" json:"transaction_id,omitempty"`
	LastError       string                `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new submission record
func (s *SubmissionRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SubmissionRecord model
func (SubmissionRecord) TableName() string {
	return "submission_records"
}
