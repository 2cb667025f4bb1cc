package service

import (
	"context"

	"e2ee-msgcore/internal/authz"

	"github.com/google/uuid"
)

// KeysForConversation resolves which public keys the actor should encrypt to
// for a conversation: the participant set minus the actor's own entry (a
// sender never self-encrypts for delivery; local copies are a client
// concern). The self-exclusion is a set difference over the membership
// result, so the invariant holds regardless of what the membership source
// returns.
func (s *Service) KeysForConversation(ctx context.Context, actorID, conversationID uuid.UUID) ([]UserDevices, error) {
	decision, err := s.gate.Authorize(ctx, actorID, conversationID)
	if err != nil {
		return nil, err
	}
	if decision != authz.Authorized {
		return nil, ErrForbidden
	}

	participants, err := s.members.ListParticipants(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return s.ListDevicesForUsers(ctx, without(participants, actorID))
}

// KeysForUsers is the direct priming path used before a conversation exists,
// e.g. for 1:1 session setup. There is no conversation to authorize against;
// the transport layer has already authenticated the actor. The actor's own
// devices are excluded here too, keeping both paths consistent.
func (s *Service) KeysForUsers(ctx context.Context, actorID uuid.UUID, userIDs []uuid.UUID) ([]UserDevices, error) {
	return s.ListDevicesForUsers(ctx, without(userIDs, actorID))
}

// without is the pure set difference ids \ {excluded}, preserving order.
func without(ids []uuid.UUID, excluded uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != excluded {
			out = append(out, id)
		}
	}
	return out
}
