package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"e2ee-msgcore/internal/authz"
	"e2ee-msgcore/internal/domain"
	"e2ee-msgcore/internal/dto"
	"e2ee-msgcore/internal/notify"
	"e2ee-msgcore/internal/signal"
	"e2ee-msgcore/internal/store"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// SubmitEnvelope persists a ciphertext envelope for an authorized sender.
// The stored content column holds a fixed placeholder; mentions come from
// the signal extractor over unencrypted metadata only. Nothing here decodes
// or inspects the ciphertext.
func (s *Service) SubmitEnvelope(ctx context.Context, actorID, conversationID uuid.UUID, req dto.SubmitEnvelopeRequest) (dto.EnvelopeResponse, error) {
	decision, err := s.gate.Authorize(ctx, actorID, conversationID)
	if err != nil {
		return dto.EnvelopeResponse{}, err
	}
	if decision != authz.Authorized {
		return dto.EnvelopeResponse{}, ErrForbidden
	}

	if len(req.Ciphertext) == 0 {
		return dto.EnvelopeResponse{}, fmt.Errorf("%w: missing ciphertext", ErrInvalidEnvelope)
	}
	if req.Algorithm == "" {
		return dto.EnvelopeResponse{}, fmt.Errorf("%w: missing algorithm", ErrInvalidEnvelope)
	}
	if req.SenderDeviceID == "" || req.SenderKey == "" {
		return dto.EnvelopeResponse{}, fmt.Errorf("%w: missing sender device or key", ErrInvalidEnvelope)
	}

	mentions := signal.ExtractMentions(req.Metadata, s.assistantID)
	mentionsJSON, err := json.Marshal(mentionStrings(mentions))
	if err != nil {
		return dto.EnvelopeResponse{}, err
	}

	msg := domain.EncryptedMessage{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       actorID,
		SenderDeviceID: req.SenderDeviceID,
		SenderKey:      req.SenderKey,
		SessionID:      req.SessionID,
		Ciphertext:     append([]byte(nil), req.Ciphertext...),
		Algorithm:      req.Algorithm,
		Content:        domain.EncryptedPlaceholder,
		Mentions:       datatypes.JSON(mentionsJSON),
		Metadata:       datatypes.JSON(req.Metadata),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.Messages().Create(ctx, &msg); err != nil {
		return dto.EnvelopeResponse{}, err
	}

	notify.EmitAsync(s.sink, notify.Event{
		ConversationID: conversationID,
		MessageID:      msg.ID,
		Mentions:       mentions,
	})

	return toEnvelopeResponse(msg), nil
}

// ListEnvelopes pages through a conversation in delivery order. after is the
// cursor returned by the previous page (0 for the start).
func (s *Service) ListEnvelopes(ctx context.Context, actorID, conversationID uuid.UUID, after int64, limit int) (dto.ListEnvelopesResponse, error) {
	decision, err := s.gate.Authorize(ctx, actorID, conversationID)
	if err != nil {
		return dto.ListEnvelopesResponse{}, err
	}
	if decision != authz.Authorized {
		return dto.ListEnvelopesResponse{}, ErrForbidden
	}

	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	msgs, err := s.store.Messages().ListAfter(ctx, conversationID, after, limit)
	if err != nil {
		return dto.ListEnvelopesResponse{}, err
	}

	resp := dto.ListEnvelopesResponse{
		Messages:   make([]dto.EnvelopeResponse, 0, len(msgs)),
		NextCursor: after,
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toEnvelopeResponse(m))
		resp.NextCursor = m.Seq
	}
	return resp, nil
}

// DeleteEnvelope soft-deletes a message. Only the original sender may delete;
// everyone else, including actors guessing message ids, sees the same
// ErrForbidden.
func (s *Service) DeleteEnvelope(ctx context.Context, actorID, messageID uuid.UUID) error {
	msg, err := s.store.Messages().Get(ctx, messageID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	if msg.SenderID != actorID {
		return ErrForbidden
	}
	if err := s.store.Messages().SoftDelete(ctx, messageID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return ErrForbidden
		}
		return err
	}
	return nil
}

func mentionStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func toEnvelopeResponse(m domain.EncryptedMessage) dto.EnvelopeResponse {
	var mentions []string
	if len(m.Mentions) > 0 {
		// Stored as a JSON string array by SubmitEnvelope.
		_ = json.Unmarshal(m.Mentions, &mentions)
	}
	if mentions == nil {
		mentions = []string{}
	}
	return dto.EnvelopeResponse{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		SenderDeviceID: m.SenderDeviceID,
		SenderKey:      m.SenderKey,
		SessionID:      m.SessionID,
		Ciphertext:     m.Ciphertext,
		Algorithm:      m.Algorithm,
		Content:        m.Content,
		Mentions:       mentions,
		CreatedAt:      m.CreatedAt,
		EditedAt:       m.EditedAt,
	}
}
