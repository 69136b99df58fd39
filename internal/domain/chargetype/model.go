// Package chargetype holds the Charge Type catalog (spec.md §3): entries
// classifying invoice lines (RENT, MAINT, UTIL_ELEC, ...).
package chargetype

import (
	"context"
	"strings"

	"github.com/leasebill/billing-engine/internal/types"
)

// ChargeType is a catalog entry classifying invoice lines.
type ChargeType struct {
	Code           string
	Name           string
	OrgID          string // empty for system-defined entries
	SystemDefined  bool
	Active         bool
}

// RentCode is the well-known code C6 resolves rent lines against. A
// missing catalog entry for it is fatal to invoice generation (spec.md
// §4.6).
const RentCode = "RENT"

// UtilityCode is the catalog code a finalized utility statement resolves
// against when C6 assembles it onto an invoice (spec.md §3/§4.6). Unlike
// RentCode, a missing entry here is non-fatal: the line is simply skipped.
func UtilityCode(t types.UtilityType) string {
	switch t {
	case types.UtilityElectricity:
		return "UTIL_ELEC"
	case types.UtilityWater:
		return "UTIL_WATER"
	case types.UtilityGas:
		return "UTIL_GAS"
	default:
		return "UTIL_" + strings.ToUpper(string(t))
	}
}

// Store is the narrow persistence interface C6 depends on.
type Store interface {
	// Resolve looks up code scoped to orgID, falling back to a
	// system-defined entry with the same code if no org-scoped one
	// exists. ok=false if neither exists.
	Resolve(ctx context.Context, orgID, code string) (ct *ChargeType, ok bool, err error)
}
