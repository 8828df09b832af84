// Package policy defines the per-resource-type authorization policies
// consulted by the gate. Policies are pure functions over the
// principal, the action and the (possibly nil) resource; they never
// touch the database or log.
package policy

import (
	"context"

	"github.com/diewo77/go-tickets/internal/gate"
	"github.com/diewo77/go-tickets/internal/models"
)

// Resource type names the gate's policies are registered under.
const (
	ResourceTickets = "tickets"
	ResourceUsers   = "users"
)

// Ownable is implemented by resources that have an owning author.
type Ownable interface {
	GetUserID() uint
}

// owns reports whether user owns resource. Resources that do not
// implement Ownable are never owned; this keeps the default deny.
func owns(user *models.User, resource any) bool {
	ownable, ok := resource.(Ownable)
	return ok && ownable.GetUserID() == user.ID
}

// TicketPolicy: any authenticated user may list, view and create
// tickets; mutating an existing ticket requires ownership or the
// manager flag.
type TicketPolicy struct{}

func (TicketPolicy) Can(_ context.Context, user *models.User, action gate.Action, resource any) bool {
	if user == nil {
		return false
	}
	switch action {
	case gate.ActionIndex, gate.ActionShow, gate.ActionStore:
		return true
	case gate.ActionUpdate, gate.ActionReplace, gate.ActionDelete:
		return user.IsManager || owns(user, resource)
	}
	return false
}

// UserPolicy: any authenticated user may list and view users;
// creating, mutating and deleting accounts is manager-only.
type UserPolicy struct{}

func (UserPolicy) Can(_ context.Context, user *models.User, action gate.Action, resource any) bool {
	if user == nil {
		return false
	}
	switch action {
	case gate.ActionIndex, gate.ActionShow:
		return true
	case gate.ActionStore, gate.ActionUpdate, gate.ActionReplace, gate.ActionDelete:
		return user.IsManager
	}
	return false
}

// NewGate returns the application gate with all resource policies
// registered. The principal is the loaded user model, so policies can
// check the manager flag without a second lookup.
func NewGate() *gate.Gate[*models.User] {
	g := gate.NewGate[*models.User]()
	g.Register(ResourceTickets, TicketPolicy{})
	g.Register(ResourceUsers, UserPolicy{})
	return g
}
