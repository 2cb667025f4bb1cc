package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"e2ee-msgcore/internal/dto"

	"github.com/google/uuid"
)

// IssuePairingCode mints a short-lived single-use code bound to the actor.
// A peer redeems it to prime keys for a 1:1 session before any conversation
// exists.
func (s *Service) IssuePairingCode(actorID uuid.UUID) (dto.PairingCodeResponse, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return dto.PairingCodeResponse{}, err
	}
	code := hex.EncodeToString(buf)
	s.codes.Put(code, actorID.String(), s.pairingTTL)
	return dto.PairingCodeResponse{
		Code:      code,
		ExpiresAt: s.now().UTC().Add(s.pairingTTL),
	}, nil
}

// ClaimPairingCode redeems a code and returns the issuer's device keys via
// the same fan-out used everywhere else. Unknown, expired, and already
// redeemed codes are indistinguishable to the caller.
func (s *Service) ClaimPairingCode(ctx context.Context, actorID uuid.UUID, code string) ([]UserDevices, error) {
	payload, ok := s.codes.Consume(code)
	if !ok {
		return nil, ErrForbidden
	}
	issuerID, err := uuid.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("corrupt pairing payload: %w", err)
	}
	return s.KeysForUsers(ctx, actorID, []uuid.UUID{issuerID})
}
