package dto

import (
	"encoding/json"
	"time"
)

type SubmitEnvelopeRequest struct {
	Ciphertext     []byte          `json:"ciphertext"`
	Algorithm      string          `json:"algorithm"`
	SenderDeviceID string          `json:"senderDeviceId"`
	SenderKey      string          `json:"senderKey"`
	SessionID      *string         `json:"sessionId,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

type EnvelopeResponse struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	SenderID       string     `json:"senderId"`
	SenderDeviceID string     `json:"senderDeviceId"`
	SenderKey      string     `json:"senderKey"`
	SessionID      *string    `json:"sessionId,omitempty"`
	Ciphertext     []byte     `json:"ciphertext"`
	Algorithm      string     `json:"algorithm"`
	Content        string     `json:"content"`
	Mentions       []string   `json:"mentions"`
	CreatedAt      time.Time  `json:"createdAt"`
	EditedAt       *time.Time `json:"editedAt,omitempty"`
}

type ListEnvelopesResponse struct {
	Messages   []EnvelopeResponse `json:"messages"`
	NextCursor int64              `json:"nextCursor"`
}
