// Package policy decides which roles may perform which citizen operations.
package policy

import (
	"context"
	"fmt"

	"idcard/internal/citizen/models"
	id "idcard/pkg/domain"
	dErrors "idcard/pkg/domain-errors"
)

// Capability names one guarded citizen operation.
type Capability string

const (
	CapCreate   Capability = "citizen:create"
	CapRead     Capability = "citizen:read"
	CapUpdate   Capability = "citizen:update"
	CapDelete   Capability = "citizen:delete"
	CapSend     Capability = "citizen:send"
	CapApprove  Capability = "citizen:approve"
	CapReject   Capability = "citizen:reject"
	CapResubmit Capability = "citizen:resubmit"
	CapPrint    Capability = "citizen:print"
	CapStats    Capability = "citizen:stats"
)

// CapabilityFor maps a status transition action to the capability guarding it.
func CapabilityFor(action models.Action) Capability {
	switch action {
	case models.ActionSend:
		return CapSend
	case models.ActionApprove:
		return CapApprove
	case models.ActionReject:
		return CapReject
	default:
		return CapResubmit
	}
}

var defaultGrants = map[id.Role][]Capability{
	id.RoleAdmin: {
		CapCreate, CapRead, CapUpdate, CapDelete, CapSend,
		CapApprove, CapReject, CapResubmit, CapPrint, CapStats,
	},
	id.RoleRegistrar:  {CapCreate, CapRead, CapUpdate, CapDelete, CapSend, CapResubmit, CapStats},
	id.RoleSupervisor: {CapRead, CapApprove, CapReject, CapStats},
	id.RoleOfficer:    {CapRead, CapPrint, CapStats},
	// citizens only use the unauthenticated status lookup
	id.RoleCitizen: nil,
}

// Gate is a static role to capability table.
type Gate struct {
	grants map[id.Role]map[Capability]struct{}
}

// NewGate builds a gate from the default grants.
func NewGate() *Gate {
	return NewGateWithGrants(defaultGrants)
}

// NewGateWithGrants builds a gate from an explicit table. Roles absent from the table hold nothing.
func NewGateWithGrants(grants map[id.Role][]Capability) *Gate {
	g := &Gate{grants: make(map[id.Role]map[Capability]struct{}, len(grants))}
	for role, caps := range grants {
		set := make(map[Capability]struct{}, len(caps))
		for _, c := range caps {
			set[c] = struct{}{}
		}
		g.grants[role] = set
	}
	return g
}

// Authorize returns nil when actor's role holds capability.
func (g *Gate) Authorize(_ context.Context, actor id.Actor, capability Capability) error {
	if actor.IsZero() || !actor.Role.IsValid() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if _, ok := g.grants[actor.Role][capability]; !ok {
		return dErrors.New(dErrors.CodeForbidden,
			fmt.Sprintf("role %s may not perform %s", actor.Role, capability))
	}
	return nil
}

// Can reports the decision without an error value.
func (g *Gate) Can(actor id.Actor, capability Capability) bool {
	return g.Authorize(context.Background(), actor, capability) == nil
}
