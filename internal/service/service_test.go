package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"e2ee-msgcore/internal/authz"
	"e2ee-msgcore/internal/domain"
	"e2ee-msgcore/internal/notify"
	"e2ee-msgcore/internal/service"
	"e2ee-msgcore/internal/store"
	"e2ee-msgcore/internal/tokens"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeMembership struct {
	mu    sync.Mutex
	convs map[uuid.UUID][]uuid.UUID
}

func newFakeMembership() *fakeMembership {
	return &fakeMembership{convs: make(map[uuid.UUID][]uuid.UUID)}
}

func (f *fakeMembership) add(convID uuid.UUID, users ...uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.convs[convID] = append(f.convs[convID], users...)
}

func (f *fakeMembership) IsParticipant(ctx context.Context, convID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.convs[convID] {
		if p == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMembership) ListParticipants(ctx context.Context, convID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.convs[convID]...), nil
}

type captureSink struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *captureSink) MentionCreated(ctx context.Context, ev notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *captureSink) snapshot() []notify.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Event(nil), c.events...)
}

var testAssistantID = uuid.MustParse("00000000-0000-0000-0000-00000000a551")

func setupService(t *testing.T) (*service.Service, *gorm.DB, *fakeMembership, *captureSink) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// sqlite allows a single writer; one pooled connection keeps concurrent
	// submits from tripping table locks in the shared-cache database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.Device{}, &domain.EncryptedMessage{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	members := newFakeMembership()
	sink := &captureSink{}
	codes := tokens.New(time.Minute)
	t.Cleanup(codes.Close)

	svc := service.New(store.New(db), authz.NewGate(members), members, codes, sink, service.Options{
		AssistantUserID: testAssistantID,
		PairingCodeTTL:  time.Minute,
	})
	return svc, db, members, sink
}

// waitFor polls cond until it holds or the deadline passes; used for the
// fire-and-forget paths (touch, mention emit).
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not reached before deadline")
}
