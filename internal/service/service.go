package service

import (
	"time"

	"e2ee-msgcore/internal/authz"
	"e2ee-msgcore/internal/notify"
	"e2ee-msgcore/internal/store"
	"e2ee-msgcore/internal/tokens"

	"github.com/google/uuid"
)

type Service struct {
	store       *store.Store
	gate        *authz.Gate
	members     authz.Membership
	codes       *tokens.Store
	sink        notify.Sink
	assistantID uuid.UUID
	pairingTTL  time.Duration
	now         func() time.Time
}

type Options struct {
	// AssistantUserID is the sentinel participant emitted into mention sets
	// when a sender asserts the assistant flag. uuid.Nil disables mentions.
	AssistantUserID uuid.UUID
	PairingCodeTTL  time.Duration
}

func New(st *store.Store, gate *authz.Gate, members authz.Membership, codes *tokens.Store, sink notify.Sink, opts Options) *Service {
	ttl := opts.PairingCodeTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		store:       st,
		gate:        gate,
		members:     members,
		codes:       codes,
		sink:        sink,
		assistantID: opts.AssistantUserID,
		pairingTTL:  ttl,
		now:         time.Now,
	}
}
