package domain

import (
	"context"

	"gorm.io/gorm"

	gatewaydomain "github.com/smallbiznis/payrail/internal/gateway/domain"
)

// Repository persists canonical records. FindForUpdate takes a row lock
// so concurrent deliveries for the same payment are serialized before
// the merge runs.
type Repository interface {
	Find(ctx context.Context, db *gorm.DB, connector, paymentID string, kind gatewaydomain.EntityKind) (*Record, error)
	FindForUpdate(ctx context.Context, db *gorm.DB, connector, paymentID string, kind gatewaydomain.EntityKind) (*Record, error)
	FindByResourceID(ctx context.Context, db *gorm.DB, connector, resourceID string) (*Record, error)
	FindByResourceIDForUpdate(ctx context.Context, db *gorm.DB, connector, resourceID string) (*Record, error)
	Insert(ctx context.Context, db *gorm.DB, record *Record) error
	Update(ctx context.Context, db *gorm.DB, record *Record) error
}
