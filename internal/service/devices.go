package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"e2ee-msgcore/internal/domain"
	"e2ee-msgcore/internal/dto"
	"e2ee-msgcore/internal/store"

	"github.com/google/uuid"
)

// keySize is the decoded length of identity and signing keys (Curve25519 /
// Ed25519 public keys as published by clients).
const keySize = 32

const touchTimeout = 5 * time.Second

// PublishDevice registers key material for one device of the actor.
// Republishing identical material is idempotent and only advances
// last_seen_at; publishing different keys under the same device id is
// rejected, since key rotation must use a fresh device id so in-flight
// sessions against the old keys stay valid.
func (s *Service) PublishDevice(ctx context.Context, actorID uuid.UUID, req dto.PublishDeviceRequest) (dto.DeviceResponse, error) {
	if req.DeviceID == "" || req.DeviceType == "" {
		return dto.DeviceResponse{}, fmt.Errorf("%w: missing deviceId or deviceType", ErrInvalidKeyMaterial)
	}
	if err := validateKey(req.IdentityKey); err != nil {
		return dto.DeviceResponse{}, fmt.Errorf("%w: identityKey: %v", ErrInvalidKeyMaterial, err)
	}
	if err := validateKey(req.SigningKey); err != nil {
		return dto.DeviceResponse{}, fmt.Errorf("%w: signingKey: %v", ErrInvalidKeyMaterial, err)
	}

	var out domain.Device
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		existing, err := tx.Devices().GetByOwner(ctx, actorID, req.DeviceID)
		switch {
		case err == nil:
			if existing.IdentityKey != req.IdentityKey || existing.SigningKey != req.SigningKey {
				return fmt.Errorf("%w: device %s already published different keys", ErrDeviceKeyConflict, req.DeviceID)
			}
			now := s.now().UTC()
			if err := tx.Devices().Touch(ctx, existing.ID, now); err != nil {
				return err
			}
			if now.After(existing.LastSeenAt) {
				existing.LastSeenAt = now
			}
			out = *existing
			return nil
		case errors.Is(err, store.ErrRecordNotFound):
			device := domain.Device{
				ID:          uuid.New(),
				UserID:      actorID,
				DeviceID:    req.DeviceID,
				IdentityKey: req.IdentityKey,
				SigningKey:  req.SigningKey,
				DeviceName:  req.DeviceName,
				DeviceType:  req.DeviceType,
				LastSeenAt:  s.now().UTC(),
			}
			if err := tx.Devices().Create(ctx, &device); err != nil {
				return err
			}
			out = device
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return dto.DeviceResponse{}, err
	}
	return toDeviceResponse(out), nil
}

// UserDevices is the canonical grouped shape for key fan-out: participants in
// membership order, each with devices most recently active first. Grouped and
// flat views are both derived from it so the two call sites cannot diverge.
type UserDevices struct {
	UserID  uuid.UUID
	Devices []domain.Device
}

// Flatten turns the grouped representation into a plain device sequence for
// callers doing direct fan-out.
func Flatten(groups []UserDevices) []domain.Device {
	var out []domain.Device
	for _, g := range groups {
		out = append(out, g.Devices...)
	}
	return out
}

// ListDevicesForUsers resolves devices for the given users, preserving the
// input user order. Unknown users yield an empty group rather than an error.
// Each successful fetch advances last_seen_at on the returned devices in the
// background; a failed touch never fails the fetch.
func (s *Service) ListDevicesForUsers(ctx context.Context, userIDs []uuid.UUID) ([]UserDevices, error) {
	ordered := dedupe(userIDs)
	devices, err := s.store.Devices().ListForUsers(ctx, ordered)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID][]domain.Device, len(ordered))
	for _, d := range devices {
		byUser[d.UserID] = append(byUser[d.UserID], d)
	}

	groups := make([]UserDevices, 0, len(ordered))
	for _, id := range ordered {
		groups = append(groups, UserDevices{UserID: id, Devices: byUser[id]})
	}

	s.touchDevices(devices)
	return groups, nil
}

// touchDevices is fire-and-forget: it runs on its own context so neither the
// parent request's deadline nor a storage hiccup can affect the caller.
func (s *Service) touchDevices(devices []domain.Device) {
	if len(devices) == 0 {
		return
	}
	ids := make([]uuid.UUID, 0, len(devices))
	for _, d := range devices {
		ids = append(ids, d.ID)
	}
	at := s.now().UTC()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), touchTimeout)
		defer cancel()
		for _, id := range ids {
			if err := s.store.Devices().Touch(ctx, id, at); err != nil {
				slog.Warn("device touch failed", "error", err, "device_id", id)
			}
		}
	}()
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("empty")
	}
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return errors.New("not base64")
	}
	if len(raw) != keySize {
		return fmt.Errorf("expected %d bytes, got %d", keySize, len(raw))
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toDeviceResponse(d domain.Device) dto.DeviceResponse {
	return dto.DeviceResponse{
		UserID:      d.UserID.String(),
		DeviceID:    d.DeviceID,
		IdentityKey: d.IdentityKey,
		SigningKey:  d.SigningKey,
		DeviceName:  d.DeviceName,
		DeviceType:  d.DeviceType,
		LastSeenAt:  d.LastSeenAt,
	}
}
