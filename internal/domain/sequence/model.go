// Package sequence holds the per-(organization, document kind) monotonic
// counter (C5) backing document numbers.
package sequence

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/leasebill/billing-engine/internal/types"
)

// NumberFormat is the bit-exact format required by spec.md §6:
// {PREFIX}-{YYYYMM}-{NNNNNN}.
var NumberFormat = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,7}-\d{6}-\d{6}$`)

// Store is the narrow persistence interface C5 depends on. Next must be
// atomic: concurrent callers for the same (orgID, kind) receive distinct,
// strictly increasing values. Gaps under rollback are acceptable;
// duplicates are not. The counter is keyed only by (orgID, kind) — it is
// NOT reset per calendar month, since the YYYYMM embedded in the formatted
// number is cosmetic and uniqueness (P5) is carried by the counter value
// alone (spec.md §4.5).
type Store interface {
	Next(ctx context.Context, orgID string, kind types.DocumentKind) (int64, error)
}

// FormatNumber renders prefix-YYYYMM-NNNNNN, normalizing prefix per
// spec.md §4.5: whitespace-only/empty collapses to the kind's default,
// non-empty is trimmed.
func FormatNumber(kind types.DocumentKind, prefix, yearMonth string, value int64) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = types.DefaultDocumentPrefix(kind)
	}
	return fmt.Sprintf("%s-%s-%06d", prefix, yearMonth, value)
}
