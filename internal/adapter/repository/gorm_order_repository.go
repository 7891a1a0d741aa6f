package repository

import (
	"context"

	"gorm.io/gorm"

	"weshop/internal/domain/entity"
	"weshop/internal/domain/repository"
	"weshop/pkg/errors"
)

type gormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &gormOrderRepository{db: db}
}

func (r *gormOrderRepository) GetByID(ctx context.Context, id uint) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Product").
		Preload("Product.Shop").
		First(&order, "orders.id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("Order", err)
		}
		return nil, errors.Internal("Failed to get order", err)
	}
	return &order, nil
}
