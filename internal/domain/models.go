package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EncryptedPlaceholder is what legacy content readers see instead of
// anything derived from ciphertext.
const EncryptedPlaceholder = "[encrypted]"

// Device is one registered client instance of a user. Rows are immutable
// except for LastSeenAt; replacing a compromised device means registering a
// new device_id, never rewriting keys in place.
type Device struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_devices_user_device,priority:1"`
	DeviceID    string    `gorm:"type:text;not null;uniqueIndex:idx_devices_user_device,priority:2"`
	IdentityKey string    `gorm:"type:text;not null"`
	SigningKey  string    `gorm:"type:text;not null"`
	DeviceName  string    `gorm:"type:text"`
	DeviceType  string    `gorm:"type:text;not null"`
	LastSeenAt  time.Time `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime"`
}

// EncryptedMessage is a ciphertext envelope. The server stores and relays it
// without ever observing plaintext; Content always holds EncryptedPlaceholder.
//
// Seq is the insert-order tie-break: List orders by (created_at, seq) so
// same-millisecond inserts still have a deterministic total order, and
// cursor pagination keys off seq.
type EncryptedMessage struct {
	Seq            int64          `gorm:"primaryKey;autoIncrement"`
	ID             uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	ConversationID uuid.UUID      `gorm:"type:uuid;not null;index:idx_messages_conv_created,priority:1"`
	SenderID       uuid.UUID      `gorm:"type:uuid;not null"`
	SenderDeviceID string         `gorm:"type:text;not null"`
	SenderKey      string         `gorm:"type:text;not null"`
	SessionID      *string        `gorm:"type:text"`
	Ciphertext     []byte         `gorm:"type:bytea;not null"`
	Algorithm      string         `gorm:"type:text;not null"`
	Content        string         `gorm:"type:text;not null"`
	Mentions       datatypes.JSON `gorm:"type:jsonb"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"not null;autoCreateTime;index:idx_messages_conv_created,priority:2"`
	EditedAt       *time.Time     `gorm:"type:timestamptz"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}
