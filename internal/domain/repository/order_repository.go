package repository

import (
	"context"

	"weshop/internal/domain/entity"
)

// OrderRepository is the read-only view of the order collaborator the chat
// service depends on. GetByID loads the product and shop so participants can
// be resolved without further round trips.
type OrderRepository interface {
	GetByID(ctx context.Context, id uint) (*entity.Order, error)
}
