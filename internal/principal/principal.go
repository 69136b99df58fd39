// Package principal defines the CurrentPrincipal collaborator (spec.md §6):
// identity/authentication is out of scope for the engine, but the engine
// still needs to know who is acting in order to stamp audit fields and
// scope number-sequence lookups. Callers supply a concrete implementation
// backed by whatever auth stack they run.
package principal

// Current is the narrow collaborator interface services depend on.
type Current interface {
	UserID() string
	OrgID() string
}

// Static is a fixed-identity implementation useful for batch jobs (the
// invoice run orchestrator) and tests.
type Static struct {
	User string
	Org  string
}

func (s Static) UserID() string { return s.User }
func (s Static) OrgID() string  { return s.Org }
