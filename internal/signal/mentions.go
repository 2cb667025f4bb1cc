// Package signal extracts side-channel signals from the unencrypted part of
// an envelope. Nothing in this package may ever look at ciphertext: mentions
// are a client-asserted trust-the-sender flag, and the server's only job is
// to carry them faithfully.
package signal

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Metadata is the client-asserted, unencrypted envelope metadata.
type Metadata struct {
	AssistantMentioned bool `json:"assistantMentioned"`
}

// ExtractMentions is pure: same metadata in, same mention set out. Malformed
// metadata yields no mentions rather than an error, since the core is a blind
// carrier and must not reject an otherwise valid envelope over an optional
// side channel.
func ExtractMentions(metadata []byte, assistantID uuid.UUID) []uuid.UUID {
	if len(metadata) == 0 || assistantID == uuid.Nil {
		return nil
	}
	var meta Metadata
	if err := json.Unmarshal(metadata, &meta); err != nil {
		return nil
	}
	if !meta.AssistantMentioned {
		return nil
	}
	return []uuid.UUID{assistantID}
}
