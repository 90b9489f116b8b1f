package identity

import (
	"context"

	"github.com/google/uuid"
)

// Role is the coarse role assigned by the external identity provider.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleAccountant Role = "accountant"
	RoleViewer     Role = "viewer"
)

// Capability is a closed enum of actions the engine distinguishes.
// The engine never inspects roles directly; it only asks whether the
// calling actor holds a capability.
type Capability string

const (
	CapLedgerView    Capability = "ledger.view"
	CapLedgerWrite   Capability = "ledger.write"
	CapAccountManage Capability = "accounts.manage"
	CapPeriodManage  Capability = "periods.manage"
	CapOrgManage     Capability = "org.manage"
	CapImportRun     Capability = "import.run"
)

var roleGrants = map[Role][]Capability{
	RoleAdmin: {
		CapLedgerView, CapLedgerWrite, CapAccountManage,
		CapPeriodManage, CapOrgManage, CapImportRun,
	},
	RoleAccountant: {CapLedgerView, CapLedgerWrite, CapImportRun},
	RoleViewer:     {CapLedgerView},
}

// Actor is the caller identity supplied by the upstream auth layer.
type Actor struct {
	ID           uuid.UUID
	Role         Role
	SubsidiaryID *uuid.UUID
}

// Can reports whether the actor holds the capability.
func (a Actor) Can(cap Capability) bool {
	for _, c := range roleGrants[a.Role] {
		if c == cap {
			return true
		}
	}
	return false
}

type contextKey struct{}

// ContextWithActor stores the actor on the context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// ActorFromContext retrieves the actor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(contextKey{}).(Actor)
	return actor, ok
}
