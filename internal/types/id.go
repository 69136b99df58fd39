package types

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Entity id prefixes, mirroring the prefix_uuid convention so ids remain
// greppable and sortable by kind in logs.
const (
	PrefixLease           = "lease"
	PrefixRentTerm        = "term"
	PrefixRecurringCharge = "rchg"
	PrefixBillingSetting  = "bset"
	PrefixChargeType      = "ctype"
	PrefixInvoice         = "inv"
	PrefixInvoiceLine     = "inv_line"
	PrefixCreditNote      = "cn"
	PrefixCreditNoteLine  = "cn_line"
	PrefixUtilityPlan     = "uplan"
	PrefixUtilityStmt     = "ustmt"
	PrefixRun             = "run"
)

// GenerateID returns a UUIDv4 prefixed with the given entity kind, e.g.
// "inv_3a9c...".
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}

// GenerateSortableID returns a k-sortable ULID prefixed with the given
// entity kind, used for append-only log rows (invoice runs) where
// insertion order should be recoverable from the id alone.
func GenerateSortableID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, ulid.Make().String())
}
