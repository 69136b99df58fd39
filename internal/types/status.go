package types

import "time"

// Status tracks the soft-delete lifecycle of a persisted row, independent
// of any domain-level status (InvoiceStatus, CreditNoteStatus, ...).
// The Postgres lease and invoice stores filter their reads to StatusActive;
// no store offers a read that bypasses the filter.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// BaseModel carries the audit and soft-delete fields every persisted
// aggregate embeds.
type BaseModel struct {
	OrgID     string    `json:"org_id"`
	Status    Status    `json:"status"`
	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
