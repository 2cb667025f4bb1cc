package store

import (
	"context"
	"time"

	"e2ee-msgcore/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeviceStore struct{ db *gorm.DB }

func (s *Store) Devices() *DeviceStore { return &DeviceStore{db: s.DB} }

func (d *DeviceStore) Create(ctx context.Context, device *domain.Device) error {
	return d.db.WithContext(ctx).Create(device).Error
}

// GetByOwner looks up a device by its owner and opaque device id.
func (d *DeviceStore) GetByOwner(ctx context.Context, userID uuid.UUID, deviceID string) (*domain.Device, error) {
	var device domain.Device
	err := d.db.WithContext(ctx).
		First(&device, "user_id = ? AND device_id = ?", userID, deviceID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &device, nil
}

// ListForUsers returns all devices of the given users, most recently active
// first. Unknown users simply contribute no rows.
func (d *DeviceStore) ListForUsers(ctx context.Context, userIDs []uuid.UUID) ([]domain.Device, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var devices []domain.Device
	err := d.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Order("last_seen_at DESC").
		Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}

// Touch advances last_seen_at. The guard keeps it monotonic: a racing touch
// with an older timestamp is simply lost, which is fine for advisory
// freshness data.
func (d *DeviceStore) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return d.db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("id = ? AND last_seen_at < ?", id, at).
		Update("last_seen_at", at).
		Error
}
