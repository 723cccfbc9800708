package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	gatewaydomain "github.com/smallbiznis/payrail/internal/gateway/domain"
	"github.com/smallbiznis/payrail/internal/record/domain"
)

type gormRepository struct{}

// Provide builds the gorm-backed record repository.
func Provide() domain.Repository {
	return &gormRepository{}
}

func (r *gormRepository) Find(ctx context.Context, db *gorm.DB, connector, paymentID string, kind gatewaydomain.EntityKind) (*domain.Record, error) {
	return r.findOne(db.WithContext(ctx), "connector = ? AND payment_id = ? AND kind = ?", connector, paymentID, kind)
}

func (r *gormRepository) FindForUpdate(ctx context.Context, db *gorm.DB, connector, paymentID string, kind gatewaydomain.EntityKind) (*domain.Record, error) {
	return r.findOne(
		db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}),
		"connector = ? AND payment_id = ? AND kind = ?", connector, paymentID, kind,
	)
}

func (r *gormRepository) FindByResourceID(ctx context.Context, db *gorm.DB, connector, resourceID string) (*domain.Record, error) {
	return r.findOne(db.WithContext(ctx), "connector = ? AND resource_id = ?", connector, resourceID)
}

func (r *gormRepository) FindByResourceIDForUpdate(ctx context.Context, db *gorm.DB, connector, resourceID string) (*domain.Record, error) {
	return r.findOne(
		db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}),
		"connector = ? AND resource_id = ?", connector, resourceID,
	)
}

func (r *gormRepository) findOne(db *gorm.DB, query string, args ...any) (*domain.Record, error) {
	var record domain.Record
	err := db.Where(query, args...).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *gormRepository) Insert(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *gormRepository) Update(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Save(record).Error
}
