package entities

import (
	"time"

	"gorm.io/datatypes"

	"github.com/vcalderon2009/note-taker/internal/domain/idempotency"
)

// IdempotencyKey represents the persisted idempotency key record. Keys are
// unique per (user, endpoint).
type IdempotencyKey struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Key         string         `gorm:"type:varchar(128);uniqueIndex:idx_idempotency_scope;not null"`
	UserID      string         `gorm:"type:varchar(64);uniqueIndex:idx_idempotency_scope;not null"`
	Endpoint    string         `gorm:"type:varchar(128);uniqueIndex:idx_idempotency_scope;not null"`
	Fingerprint string         `gorm:"type:varchar(64);not null"`
	Response    datatypes.JSON `gorm:"type:jsonb;not null"`
	ExpiresAt   time.Time      `gorm:"index:idx_idempotency_expires;not null"`
}

// TableName specifies the table name for IdempotencyKey.
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// EtoD converts database entity to domain model.
func (k *IdempotencyKey) EtoD() *idempotency.Record {
	return &idempotency.Record{
		Key:         k.Key,
		UserID:      k.UserID,
		Endpoint:    k.Endpoint,
		Fingerprint: k.Fingerprint,
		Response:    []byte(k.Response),
		ExpiresAt:   k.ExpiresAt,
		CreatedAt:   k.CreatedAt,
	}
}

// NewSchemaIdempotencyKey creates a database entity from domain model.
func NewSchemaIdempotencyKey(r *idempotency.Record) *IdempotencyKey {
	return &IdempotencyKey{
		Key:         r.Key,
		UserID:      r.UserID,
		Endpoint:    r.Endpoint,
		Fingerprint: r.Fingerprint,
		Response:    datatypes.JSON(r.Response),
		ExpiresAt:   r.ExpiresAt,
		CreatedAt:   r.CreatedAt,
	}
}
