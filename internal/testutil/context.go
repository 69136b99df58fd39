package testutil

import (
	"context"

	"github.com/leasebill/billing-engine/internal/types"
)

// DefaultOrgID and DefaultUserID seed the principal most tests act as.
const (
	DefaultOrgID  = "org_test"
	DefaultUserID = "user_test"
)

// SetupContext returns a context carrying the default org/user/request ids,
// mirroring what a real request-scoped context would carry.
func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxOrgID, DefaultOrgID)
	ctx = context.WithValue(ctx, types.CtxUserID, DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, "req_test")
	return ctx
}
