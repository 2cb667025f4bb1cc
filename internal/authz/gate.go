// Package authz is the single choke point for conversation-scoped access.
// Every component that reads or writes data keyed by a conversation id goes
// through Gate.Authorize rather than re-implementing the check.
package authz

import (
	"context"

	"github.com/google/uuid"
)

// Decision deliberately has no "not found" value: a nonexistent conversation
// and a conversation the actor is not a member of are both Denied, so callers
// cannot probe for conversation existence.
type Decision int

const (
	Denied Decision = iota
	Authorized
)

// Membership is the external conversation-membership collaborator.
type Membership interface {
	IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
	ListParticipants(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error)
}

type Gate struct {
	members Membership
}

func NewGate(members Membership) *Gate {
	return &Gate{members: members}
}

// Authorize returns Denied (not an error) when the actor is not a participant
// or the conversation does not exist. An error means the membership source
// itself failed and the operation should be retried by the caller.
func (g *Gate) Authorize(ctx context.Context, actorID, conversationID uuid.UUID) (Decision, error) {
	ok, err := g.members.IsParticipant(ctx, conversationID, actorID)
	if err != nil {
		return Denied, err
	}
	if !ok {
		return Denied, nil
	}
	return Authorized, nil
}
