package service_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"e2ee-msgcore/internal/domain"
	"e2ee-msgcore/internal/dto"
	"e2ee-msgcore/internal/service"

	"github.com/google/uuid"
)

func testKey(seed byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func publishReq(deviceID string, seed byte) dto.PublishDeviceRequest {
	return dto.PublishDeviceRequest{
		DeviceID:    deviceID,
		IdentityKey: testKey(seed),
		SigningKey:  testKey(seed + 1),
		DeviceName:  "test device",
		DeviceType:  "mobile",
	}
}

func TestPublishDeviceIdempotent(t *testing.T) {
	svc, db, _, _ := setupService(t)
	userID := uuid.New()

	first, err := svc.PublishDevice(context.Background(), userID, publishReq("phone-1", 1))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Simulates an app restart re-publishing identical key material.
	time.Sleep(5 * time.Millisecond)
	second, err := svc.PublishDevice(context.Background(), userID, publishReq("phone-1", 1))
	if err != nil {
		t.Fatalf("republish: %v", err)
	}

	var count int64
	if err := db.Model(&domain.Device{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count devices: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 device row, got %d", count)
	}
	if second.LastSeenAt.Before(first.LastSeenAt) {
		t.Fatalf("last_seen_at went backward: %v -> %v", first.LastSeenAt, second.LastSeenAt)
	}
}

func TestPublishDeviceKeyConflict(t *testing.T) {
	svc, db, _, _ := setupService(t)
	userID := uuid.New()

	if _, err := svc.PublishDevice(context.Background(), userID, publishReq("phone-1", 1)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_, err := svc.PublishDevice(context.Background(), userID, publishReq("phone-1", 9))
	if !errors.Is(err, service.ErrDeviceKeyConflict) {
		t.Fatalf("expected ErrDeviceKeyConflict, got %v", err)
	}

	// No silent overwrite.
	var device domain.Device
	if err := db.First(&device, "user_id = ? AND device_id = ?", userID, "phone-1").Error; err != nil {
		t.Fatalf("load device: %v", err)
	}
	if device.IdentityKey != testKey(1) {
		t.Fatalf("identity key was overwritten")
	}
}

func TestPublishDeviceRejectsBadKeyMaterial(t *testing.T) {
	svc, _, _, _ := setupService(t)
	userID := uuid.New()

	cases := []dto.PublishDeviceRequest{
		{DeviceID: "d1", IdentityKey: "", SigningKey: testKey(1), DeviceType: "mobile"},
		{DeviceID: "d1", IdentityKey: "not base64!!", SigningKey: testKey(1), DeviceType: "mobile"},
		{DeviceID: "d1", IdentityKey: base64.StdEncoding.EncodeToString([]byte("short")), SigningKey: testKey(1), DeviceType: "mobile"},
		{DeviceID: "", IdentityKey: testKey(1), SigningKey: testKey(2), DeviceType: "mobile"},
	}
	for i, req := range cases {
		if _, err := svc.PublishDevice(context.Background(), userID, req); !errors.Is(err, service.ErrInvalidKeyMaterial) {
			t.Fatalf("case %d: expected ErrInvalidKeyMaterial, got %v", i, err)
		}
	}
}

func TestListDevicesForUsersOrdering(t *testing.T) {
	svc, db, _, _ := setupService(t)
	u1 := uuid.New()
	u2 := uuid.New()
	unknown := uuid.New()

	for i, id := range []string{"old", "mid", "new"} {
		if _, err := svc.PublishDevice(context.Background(), u1, publishReq(id, byte(10+2*i))); err != nil {
			t.Fatalf("publish %s: %v", id, err)
		}
	}
	if _, err := svc.PublishDevice(context.Background(), u2, publishReq("only", 30)); err != nil {
		t.Fatalf("publish u2: %v", err)
	}

	// Spread last_seen_at so the expected order is unambiguous.
	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		err := db.Model(&domain.Device{}).
			Where("user_id = ? AND device_id = ?", u1, id).
			Update("last_seen_at", base.Add(time.Duration(i)*time.Minute)).Error
		if err != nil {
			t.Fatalf("set last_seen_at: %v", err)
		}
	}

	groups, err := svc.ListDevicesForUsers(context.Background(), []uuid.UUID{u2, u1, unknown})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].UserID != u2 || groups[1].UserID != u1 || groups[2].UserID != unknown {
		t.Fatalf("input user order not preserved: %+v", groups)
	}
	if len(groups[2].Devices) != 0 {
		t.Fatalf("unknown user should yield empty device list")
	}
	got := []string{}
	for _, d := range groups[1].Devices {
		got = append(got, d.DeviceID)
	}
	want := []string{"new", "mid", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected most recently active first %v, got %v", want, got)
		}
	}
}

func TestListDevicesTouchAdvancesLastSeen(t *testing.T) {
	svc, db, _, _ := setupService(t)
	userID := uuid.New()

	if _, err := svc.PublishDevice(context.Background(), userID, publishReq("phone-1", 1)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	stale := time.Now().UTC().Add(-time.Hour)
	if err := db.Model(&domain.Device{}).Where("user_id = ?", userID).Update("last_seen_at", stale).Error; err != nil {
		t.Fatalf("age device: %v", err)
	}

	if _, err := svc.ListDevicesForUsers(context.Background(), []uuid.UUID{userID}); err != nil {
		t.Fatalf("list: %v", err)
	}

	waitFor(t, func() bool {
		var device domain.Device
		if err := db.First(&device, "user_id = ?", userID).Error; err != nil {
			return false
		}
		return device.LastSeenAt.After(stale)
	})
}
