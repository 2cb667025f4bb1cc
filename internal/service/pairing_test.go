package service_test

import (
	"context"
	"errors"
	"testing"

	"e2ee-msgcore/internal/service"

	"github.com/google/uuid"
)

func TestPairingCodeRoundTrip(t *testing.T) {
	svc, _, _, _ := setupService(t)
	issuer := uuid.New()
	claimer := uuid.New()

	if _, err := svc.PublishDevice(context.Background(), issuer, publishReq("issuer-phone", 1)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	code, err := svc.IssuePairingCode(issuer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	groups, err := svc.ClaimPairingCode(context.Background(), claimer, code.Code)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(groups) != 1 || groups[0].UserID != issuer {
		t.Fatalf("expected issuer's devices, got %+v", groups)
	}
	if len(groups[0].Devices) != 1 || groups[0].Devices[0].DeviceID != "issuer-phone" {
		t.Fatalf("expected issuer-phone, got %+v", groups[0].Devices)
	}
}

func TestPairingCodeSingleUse(t *testing.T) {
	svc, _, _, _ := setupService(t)
	issuer := uuid.New()
	claimer := uuid.New()

	code, err := svc.IssuePairingCode(issuer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.ClaimPairingCode(context.Background(), claimer, code.Code); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := svc.ClaimPairingCode(context.Background(), claimer, code.Code); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("second claim: expected ErrForbidden, got %v", err)
	}
}

func TestPairingCodeUnknown(t *testing.T) {
	svc, _, _, _ := setupService(t)
	if _, err := svc.ClaimPairingCode(context.Background(), uuid.New(), "nope"); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
