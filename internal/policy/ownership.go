// Package policy holds the authorization rules registered on the board's gate.
package policy

import (
	"context"

	"github.com/diewo77/go-board/gate"
)

// ResourceMessage is the gate resource type for board messages.
const ResourceMessage = "message"

// Ownable is implemented by models that have an author.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy restricts mutating actions to the resource's author.
// Replying and reacting are open to any signed-in user.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can reports whether userID may perform action on resource.
// A nil resource (create) is always allowed.
func (p *OwnershipPolicy) Can(_ context.Context, userID uint, action gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		// deny resources that cannot tell us who owns them
		return false
	}
	switch action {
	case gate.ActionUpdate, gate.ActionDelete:
		return ownable.GetUserID() == userID
	default:
		return true
	}
}

// NewGate returns a gate with the board's policies registered.
func NewGate() *gate.Gate[uint] {
	g := gate.NewGate[uint]()
	g.Register(ResourceMessage, NewOwnershipPolicy())
	return g
}
