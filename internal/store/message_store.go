package store

import (
	"context"

	"e2ee-msgcore/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageStore struct{ db *gorm.DB }

func (s *Store) Messages() *MessageStore { return &MessageStore{db: s.DB} }

func (m *MessageStore) Create(ctx context.Context, msg *domain.EncryptedMessage) error {
	return m.db.WithContext(ctx).Create(msg).Error
}

func (m *MessageStore) Get(ctx context.Context, id uuid.UUID) (*domain.EncryptedMessage, error) {
	var msg domain.EncryptedMessage
	if err := m.db.WithContext(ctx).First(&msg, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// ListAfter pages through a conversation in delivery order. after is the seq
// of the last message the caller has seen (0 for the start). Sorting and the
// cursor both key off seq: seq is assigned at insert in commit order, so two
// concurrent submits can never make a row appear behind an already-fetched
// cursor, and no row is skipped or duplicated across sequential fetches.
// created_at is wall-clock and captured before insert, so it can invert
// relative to commit order and must not drive the sort.
func (m *MessageStore) ListAfter(ctx context.Context, convID uuid.UUID, after int64, limit int) ([]domain.EncryptedMessage, error) {
	var msgs []domain.EncryptedMessage
	tx := m.db.WithContext(ctx).
		Where("conversation_id = ? AND seq > ?", convID, after).
		Order("seq ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// SoftDelete marks one row deleted. Rows are never hard-deleted so other
// participants can still re-synchronize conversation ordering locally.
func (m *MessageStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := m.db.WithContext(ctx).Delete(&domain.EncryptedMessage{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
